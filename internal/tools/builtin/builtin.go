// Package builtin wires the builtin tool families into a manager. It is
// the static, compile-time equivalent of a plugin directory scan: every
// family contributes a registrar, and each registrar decides for itself
// which tools to construct based on available credentials.
package builtin

import (
	"github.com/ai-zerolab/lightblue/internal/config"
	"github.com/ai-zerolab/lightblue/internal/tools"
	"github.com/ai-zerolab/lightblue/internal/tools/local"
	"github.com/ai-zerolab/lightblue/internal/tools/media"
	"github.com/ai-zerolab/lightblue/internal/tools/web"
)

// All returns the registrars for every builtin tool family.
func All(s config.Settings) []tools.Registrar {
	return []tools.Registrar{
		local.Register(s),
		web.Register(s),
		media.Register(s),
	}
}
