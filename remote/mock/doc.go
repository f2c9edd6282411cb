// Package mock provides an in-memory catalog fetcher for tests.
//
// # Usage
//
//	fetcher := mock.NewMockFetcher(
//	    []core.RawSwatch{{Id: 1, HexColor: "ff0000"}},
//	    []core.RawSwatch{{Id: 2, HexColor: "00ff00"}},
//	)
//
//	// Fail page 2 once, then serve it normally
//	fetcher.FailPage(2, 1, errors.New("boom"))
//
//	// Check which pages were requested
//	pages := fetcher.Calls()
package mock
