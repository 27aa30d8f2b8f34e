// Package styledex provides a Go client for the styledex catalog
// recommendation service.
//
//	client := styledex.New("http://localhost:8080",
//	    styledex.WithAPIKey("secret"),
//	)
//
//	similar, _ := client.Similar(ctx, "p123",
//	    styledex.WithTopN(5),
//	    styledex.WithMinRating(4),
//	)
//
//	risk, _ := client.Risk(ctx, "p123")
//	if risk.HighRisk {
//	    fmt.Println("safer picks:", risk.SaferAlternatives)
//	}
package styledex
