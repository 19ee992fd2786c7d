package interpreters

import (
	"github.com/Comcast/casematch/cases"
	"github.com/Comcast/casematch/interpreters/ecmascript"
	"github.com/Comcast/casematch/interpreters/noop"
)

func Standard() cases.InterpretersMap {
	is := cases.NewInterpretersMap()

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es

	ext := ecmascript.NewInterpreter()
	ext.Extended = true
	is["ecmascript-ext"] = ext
	is["ecmascript-5.1-ext"] = ext

	is["noop"] = noop.NewInterpreter()

	return is
}
