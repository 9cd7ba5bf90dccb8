// Package all imports all rule packages to register them.
// Import this package with a blank identifier to enable all rules:
//
//	import _ "github.com/shiplint/shiplint/internal/rules/all"
package all

import (
	// Import all rule packages to trigger their init() registration
	_ "github.com/shiplint/shiplint/internal/rules/ct"
	_ "github.com/shiplint/shiplint/internal/rules/dl"
)
