package database

import (
	"context"
	"log"

	"storepos/internal/model"
	"storepos/internal/money"
	"storepos/internal/repository"
)

// sampleProducts is the starter grocery catalog: id, name, price, stock, brand,
// supplier and per-unit profit.
var sampleProducts = []model.Product{
	{ID: 1, Name: "Rice", Price: money.FromInt(50), Quantity: 100, Brand: "BestRice", Supplier: "GrainSupply Co.", UnitProfit: money.FromInt(10)},
	{ID: 2, Name: "Wheat Flour", Price: money.FromInt(30), Quantity: 200, Brand: "GoldenGrain", Supplier: "FarmFresh Ltd.", UnitProfit: money.FromInt(8)},
	{ID: 3, Name: "Sugar", Price: money.FromInt(40), Quantity: 150, Brand: "Sweetness", Supplier: "Sweetness Inc.", UnitProfit: money.FromInt(12)},
	{ID: 4, Name: "Cooking Oil", Price: money.FromInt(150), Quantity: 50, Brand: "HealthyOil", Supplier: "OilMart Supplies", UnitProfit: money.FromInt(30)},
	{ID: 5, Name: "Salt", Price: money.FromInt(10), Quantity: 300, Brand: "PureSalt", Supplier: "MineralSuppliers", UnitProfit: money.FromInt(3)},
	{ID: 6, Name: "Spices Pack", Price: money.FromInt(200), Quantity: 40, Brand: "SpiceKing", Supplier: "SpiceHouse", UnitProfit: money.FromInt(40)},
	{ID: 7, Name: "Tea", Price: money.FromInt(250), Quantity: 70, Brand: "BrewBest", Supplier: "TeaTime Ltd.", UnitProfit: money.FromInt(50)},
	{ID: 8, Name: "Coffee", Price: money.FromInt(300), Quantity: 30, Brand: "MorningJoy", Supplier: "CoffeeCo", UnitProfit: money.FromInt(60)},
	{ID: 9, Name: "Lentils", Price: money.FromInt(80), Quantity: 120, Brand: "NutriLentils", Supplier: "PulseWorld", UnitProfit: money.FromInt(15)},
	{ID: 10, Name: "Biscuits", Price: money.FromInt(20), Quantity: 200, Brand: "CrunchyBites", Supplier: "SnackMart", UnitProfit: money.FromInt(5)},
	{ID: 11, Name: "Bread", Price: money.FromInt(25), Quantity: 50, Brand: "DailyBread", Supplier: "BakeryFresh", UnitProfit: money.FromInt(5)},
	{ID: 12, Name: "Butter", Price: money.FromInt(60), Quantity: 80, Brand: "CreamyButter", Supplier: "DairyBest", UnitProfit: money.FromInt(10)},
	{ID: 13, Name: "Milk", Price: money.FromInt(45), Quantity: 150, Brand: "FarmFresh Milk", Supplier: "DairyWorld", UnitProfit: money.FromInt(9)},
	{ID: 14, Name: "Eggs", Price: money.FromInt(5), Quantity: 500, Brand: "HealthyEggs", Supplier: "EggSuppliers", UnitProfit: money.FromInt(2)},
	{ID: 15, Name: "Cheese", Price: money.FromInt(150), Quantity: 60, Brand: "CheeseDelight", Supplier: "DairyBest", UnitProfit: money.FromInt(20)},
}

// SeedSampleData inserts the starter catalog when no product exists yet.
// Opening stock is written to the ledger as IN entries. It returns how many
// products were inserted.
func SeedSampleData(
	ctx context.Context,
	txManager repository.TransactionManager,
	products repository.ProductRepository,
	ledger repository.InventoryTxRepository,
	taxRate money.Money,
) (int, error) {
	n, err := products.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("Catalog already has %d products, skipping sample data", n)
		return 0, nil
	}

	err = txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entries := make([]model.InventoryTransaction, 0, len(sampleProducts))
		for _, sample := range sampleProducts {
			p := sample
			p.TaxRate = taxRate
			if err := products.Create(txCtx, &p); err != nil {
				return err
			}
			entries = append(entries, model.InventoryTransaction{
				ProductID:       p.ID,
				TransactionType: model.TxTypeIn,
				QuantityChanged: p.Quantity,
				StockAfter:      p.Quantity,
			})
		}
		return ledger.CreateBatch(txCtx, entries)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("Inserted %d sample products", len(sampleProducts))
	return len(sampleProducts), nil
}
