package assert

import (
	"fmt"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
	"os"
)

func assert(msg string, data ...interface{}) {
	fields := make(map[string]interface{})
	for i := 1; i < len(data); i += 2 {
		fields[fmt.Sprint(data[i-1])] = data[i]
	}

	logger := log.GetLogger().WithFields(fields)
	logger.Fatal(msg)
	os.Exit(1)
}

func Assert(truth bool, msg string, data ...any) {
	if !truth {
		assert(msg, data...)
	}
}

func NotNil(obj any, msg string, data ...any) {
	if obj != nil {
		return
	}

	assert(msg, data...)
}

func NoError(err error, msg string, data ...any) {
	if err != nil {
		data = append(data, "error", err)
		assert(msg, data...)
	}
}
