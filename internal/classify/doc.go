// Package classify assigns public indicators and a risk level to Notion pages.
//
// The Notion API does not expose sharing settings, so every indicator is an
// indirect signal. Two or more indicators make a page high risk, one makes it
// medium risk, and none leaves it low risk.
package classify
