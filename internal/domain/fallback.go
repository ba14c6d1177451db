package domain

// geekQuotes is the fixed list served for CategoryGeek.
var geekQuotes = []Quote{
	"The best way to predict the future is to implement it.",
	"Any sufficiently advanced technology is indistinguishable from magic.",
	"The only way to learn a new programming language is by writing programs in it.",
	"Talk is cheap. Show me the code.",
	"First, solve the problem. Then, write the code.",
	"Code is like humor. When you have to explain it, it's bad.",
	"Sometimes it pays to stay in bed on Monday, rather than spending the rest of the week debugging Monday's code.",
	"It's not a bug – it's an undocumented feature.",
	"The most damaging phrase in the language is 'We've always done it this way!'",
	"The computer was born to solve problems that did not exist before.",
}

var fallbacks = map[Category]Quote{
	CategoryZen:        "The journey of a thousand miles begins with one step.",
	CategoryBible:      "For God so loved the world, that he gave his only begotten Son.",
	CategoryLDS:        "Faith is not by chance, but by choice.",
	CategoryGeek:       geekQuotes[0],
	CategorySoftware:   "Software is a great combination between artistry and engineering.",
	CategoryPhilosophy: "The only true wisdom is in knowing you know nothing. - Socrates",
}

// GeekQuotes returns a copy of the fixed geek list.
func GeekQuotes() []Quote {
	out := make([]Quote, len(geekQuotes))
	copy(out, geekQuotes)

	return out
}

// FallbackQuote returns the static quote served when a category's source
// yields nothing. It is non-empty for every valid category.
func FallbackQuote(c Category) Quote {
	return fallbacks[c]
}
