// Package web embeds the dashboard's static page for serving from the Go
// binary.
//
// Usage in the API server:
//
//	import "github.com/PredictRAM-Org/PredictRAM--FinancialAnalysis/web"
//	fs := web.DistFS()  // returns io/fs.FS rooted at out/
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:out
var dist embed.FS

// DistFS returns a filesystem rooted at the embedded out/ directory.
// This is ready to use with http.FileServerFS or http.FS.
func DistFS() fs.FS {
	sub, err := fs.Sub(dist, "out")
	if err != nil {
		// out is embedded at compile time, so Sub cannot fail
		panic("web.DistFS: " + err.Error())
	}
	return sub
}
