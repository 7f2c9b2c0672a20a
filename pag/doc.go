// Package pag provides reaction-driven paginated messages for Discord.
//
// A Navigator displays one page of text at a time as an embed and lets the
// user who requested it flip between pages by adding reactions. It stops
// responding and strips its reactions once no page has been turned for the
// configured timeout, and deletes itself when its owner closes it.
//
// Paginator splits long text into pages that fit in a single message.
//
//	p := pag.NewPaginator(pag.WithMaxLines(10))
//	p.Add(longText)
//	pages, err := p.Pages()
//	...
//	nav, err := pag.NewFromInput(session, input, pages, pag.WithTitle("Help"))
//	...
//	go nav.Run(ctx)
package pag
