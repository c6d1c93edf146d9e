package folio

import _ "embed"

// Version is the release of the folio module, embedded from the VERSION file.
//
//go:embed VERSION
var Version string
