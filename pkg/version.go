package pkg

import "fmt"

var (
	// These variables are here only to show current version. They are set in makefile during build process
	FrontierVersion         = "devel"
	GitRevision             = "devel"
	FrontierVersionRevision = fmt.Sprintf("%s-%s", FrontierVersion, GitRevision)
)
