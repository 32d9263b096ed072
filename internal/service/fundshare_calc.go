package service

// subscribeQuote prices a subscription: the fee comes off the top, the net
// amount becomes contributed capital, and units are issued at the current
// per-unit price.
func subscribeQuote(amount, feeRate, navPerUnit float64) (fee, net, units float64) {
	fee = amount * feeRate
	net = amount - fee
	units = net / navPerUnit
	return fee, net, units
}

// redeemQuote prices a redemption: units are sold at the per-unit price,
// the fee comes out of the proceeds, and the net amount is paid from fund
// cash.
func redeemQuote(units, feeRate, navPerUnit float64) (gross, fee, net float64) {
	gross = units * navPerUnit
	fee = gross * feeRate
	net = gross - fee
	return gross, fee, net
}
