package util

import (
	"fmt"
	"time"
)

// FormatMillis formats a duration as milliseconds with three decimals.
func FormatMillis(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", d.Seconds()*1000)
}
