// Package view renders HTML fragments streamed to live item pages.
package view

import "strconv"

// ItemTableID is the element id patched by live item list updates.
const ItemTableID = "items"

// ItemDetailID is the element id patched by live single-item updates.
const ItemDetailID = "item-detail"

// FormatPrice renders a unit price with two decimals.
func FormatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', 2, 64)
}
