// Package all registers all shell commands.
package all

import (
	// commands
	_ "github.com/robotalks/cymbal/pkg/cli/cmds/actuator"
	_ "github.com/robotalks/cymbal/pkg/cli/cmds/music"
)
