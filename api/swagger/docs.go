// Package swagger holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go -o api/swagger
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.LoginUserRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "403": {"description": "Forbidden"}}
            }
        },
        "/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Get current user", "responses": {"200": {"description": "OK"}}}
        },
        "/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Create user", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/products": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Get products", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["catalog"], "summary": "Create product", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/api/products/search": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["catalog"],
                "summary": "Search products",
                "parameters": [{"type": "string", "name": "q", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/checkout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["billing"],
                "summary": "Checkout",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/service.CheckoutRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/api/bills/{id}/receipt": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "tags": ["billing"],
                "summary": "Get receipt text",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/reports/sales": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["reports"], "summary": "Sales and profit report", "responses": {"200": {"description": "OK"}}}
        },
        "/api/reorders/scan": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["reorders"], "summary": "Scan reorder levels", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "service.LoginUserRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "service.CheckoutItemRequest": {
            "type": "object",
            "required": ["product_id", "quantity"],
            "properties": {"product_id": {"type": "integer"}, "quantity": {"type": "integer"}}
        },
        "service.CheckoutRequest": {
            "type": "object",
            "required": ["phone"],
            "properties": {
                "phone": {"type": "string"},
                "name": {"type": "string"},
                "address": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/service.CheckoutItemRequest"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Store POS API",
	Description:      "Catalog, customers, checkout, receipts, reports and reorders for a single store.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
