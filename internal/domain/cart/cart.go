// Package cart holds the pure cart reducer. It owns no storage and touches
// no transport, so the merge/total rules are testable in isolation.
package cart

// Line is what the client submits per product at checkout.
type Line struct {
	ProductID string
	Quantity  int
}

// Normalize merges duplicate product lines and drops lines with a
// non-positive quantity or empty product id. Order of first appearance is
// preserved. The result may be empty.
func Normalize(lines []Line) []Line {
	index := make(map[string]int, len(lines))
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// TotalQuantity sums line quantities.
func TotalQuantity(lines []Line) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
