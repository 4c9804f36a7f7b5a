package main

import (
	"time"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/source"
)

// sampleRows backs -source static so a view can be tried without the shop
// API or a database.
func sampleRows(view string) []engine.Row {
	switch view {
	case "inventory":
		return []engine.Row{
			{"itemName": "Red Label", "costPrice": 320, "sellingPrice": 400, "type": "Whiskey", "status": "active"},
			{"itemName": "Old Monk", "costPrice": 150, "sellingPrice": 190, "type": "Rum", "status": "active"},
			{"itemName": "Double Black Label", "costPrice": 279, "sellingPrice": 350, "type": "Whiskey", "status": "inactive"},
			{"itemName": "Sula", "costPrice": 540, "sellingPrice": 650, "type": "Wine", "status": "active"},
			{"itemName": "Magic Moments", "costPrice": 900, "sellingPrice": 1100, "type": "Vodka", "status": "active"},
			{"itemName": "Blenders Pride", "costPrice": 700, "sellingPrice": 820, "type": "Whiskey", "status": "active"},
			{"itemName": "Absolute Vodka", "costPrice": 900, "sellingPrice": 1200, "type": "Vodka", "status": "inactive"},
		}
	case "items":
		return []engine.Row{
			{"id": "1", "itemName": "Red Label", "costPrice": 320.0, "sellingPrice": 400.0,
				"quantity": source.Quantity{Size: "ml", Value: 750, Identifier: "750ml"}},
			{"id": "2", "itemName": "Red Label", "costPrice": 90.0, "sellingPrice": 120.0,
				"quantity": source.Quantity{Size: "ml", Value: 180, Identifier: "180ml"}},
			{"id": "3", "itemName": "Old Monk", "costPrice": 1200.0, "sellingPrice": 1500.0,
				"quantity": source.Quantity{Size: "L", Value: 1000, Identifier: "1L"}},
		}
	case "transactions":
		day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
		return []engine.Row{
			{"itemName": "Red Label", "Quantity": 2, "totalAmount": 800, "costPrice": 320, "discount": 0, "sellingPrice": 400, "transactionDate": day(3), "paymentMode": "cash"},
			{"itemName": "Sula", "Quantity": 1, "totalAmount": 600, "costPrice": 540, "discount": 50, "sellingPrice": 650, "transactionDate": day(1), "paymentMode": "card"},
			{"itemName": "Old Monk", "Quantity": 3, "totalAmount": 570, "costPrice": 150, "discount": 0, "sellingPrice": 190, "transactionDate": day(2), "paymentMode": "cash"},
		}
	case "deposits":
		return []engine.Row{
			{"vendorName": "Kiran Traders", "totalAmount": 12000, "paidAmount": 10000, "discount": 500, "remainingAmount": 1500},
			{"vendorName": "Himal Distillery", "totalAmount": 8000, "paidAmount": 8000, "discount": 0, "remainingAmount": 0},
		}
	case "receivables":
		return []engine.Row{
			{"customerName": "Asha", "totalAmount": 1200, "receivedAmount": 1000, "discount": 0, "remainingAmount": 200},
			{"customerName": "Bimal", "totalAmount": 300, "receivedAmount": 300, "discount": 0, "remainingAmount": 0},
		}
	default:
		return nil
	}
}
