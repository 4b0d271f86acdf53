package planner

import "time"

// Quote is a motivational line shown on the daily page.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

var quotes = []Quote{
	{Text: "The future depends on what you do today.", Author: "Mahatma Gandhi"},
	{Text: "It always seems impossible until it's done.", Author: "Nelson Mandela"},
	{Text: "The only way to do great work is to love what you do.", Author: "Steve Jobs"},
	{Text: "Believe you can and you're halfway there.", Author: "Theodore Roosevelt"},
	{Text: "Don't watch the clock; do what it does. Keep going.", Author: "Sam Levenson"},
}

// QuoteFor picks the quote of the calendar day of t; every caller sees the same quote that day.
func QuoteFor(t time.Time) Quote {
	y, m, d := t.Date()
	return quotes[(y*372+int(m)*31+d)%len(quotes)]
}
