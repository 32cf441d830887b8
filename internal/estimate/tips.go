package estimate

var tipsByCategory = map[string][]string{
	"Food": {
		"Cook meals at home instead of eating out",
		"Meal prep for the week to avoid impulse food purchases",
		"Use grocery store loyalty programs and coupons",
	},
	"Shopping": {
		"Implement a 24-hour rule before making non-essential purchases",
		"Look for second-hand options for clothing and household items",
		"Unsubscribe from retail marketing emails to reduce temptation",
	},
	"Entertainment": {
		"Look for free or low-cost entertainment options in your area",
		"Share subscription services with family or friends",
		"Use your local library for books, movies, and other media",
	},
	"Transportation": {
		"Consider carpooling, biking, or public transit when possible",
		"Combine errands to reduce fuel consumption",
		"Shop around for better auto insurance rates",
	},
	"Subscriptions": {
		"Audit all your subscriptions and cancel unused ones",
		"Look for annual payment options that offer discounts",
		"Share subscription costs with family members",
	},
	"Utilities": {
		"Install energy-efficient light bulbs and appliances",
		"Adjust your thermostat by a few degrees to save on heating/cooling",
		"Fix leaky faucets and use water-saving fixtures",
	},
	"Groceries": {
		"Plan meals around sales and seasonal produce",
		"Buy staples in bulk when on sale",
		"Use a shopping list and avoid impulse purchases",
	},
	"Housing": {
		"Refinance your mortgage if interest rates have dropped",
		"Consider a roommate to share housing costs",
		"Negotiate rent when renewing your lease",
	},
}

var genericTips = []string{
	"Track your spending in this category to identify potential cuts",
	"Look for lower-cost alternatives that provide similar value",
	"Set a monthly budget for this category and stick to it",
}

// savingsTips returns the advice lines attached to a category's
// recommendation.
func savingsTips(category string) []string {
	if tips, ok := tipsByCategory[category]; ok {
		return tips
	}
	return genericTips
}
