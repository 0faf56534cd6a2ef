package pricing

// ParseAmount interprets raw user input as a currency amount in minor units.
// Everything except digits is stripped first, so pasted values like
// "Rp 12.000" or "12,000" parse the same as "12000".
func ParseAmount(raw string) Money {
	var amount Money
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		amount = amount*10 + Money(r-'0')
	}
	return amount
}
