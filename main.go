package main

import (
	"context"
	"os"

	"github.com/decletyarnaud-cyber/immo-agent-paris/cmd"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/db"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/log"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util"
	"github.com/decletyarnaud-cyber/immo-agent-paris/internal/util/assert"
)

func main() {
	config := util.GetConfig()

	log.InitLogger(config)

	// log panic error
	defer func() {
		if r := recover(); r != nil {
			logger := log.GetLogger()
			logger.Panic(r)
		}
	}()

	connection, err := db.GetConnection(config)
	assert.NoError(err, "database connection failed")

	ctx := context.Background()

	err = cmd.Run(ctx, connection, config)
	if err != nil {
		// re-fetching logger to log with all fields appended during program run
		logger := log.GetLogger()
		logger.Fatalln(err)
	}

	os.Exit(0)
}
