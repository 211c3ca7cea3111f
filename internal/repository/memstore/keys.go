package memstore

import "fmt"

// Sort keys are compared as strings, so numbers are rendered fixed-width.

func padInt(n int) string { return fmt.Sprintf("%012d", n) }

func padFloat(f float64) string { return fmt.Sprintf("%020.4f", f) }

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
