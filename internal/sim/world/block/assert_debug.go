//go:build debug

package block

import "fmt"

const debugBuild = true

func assertf(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("block: "+format, args...))
	}
}
