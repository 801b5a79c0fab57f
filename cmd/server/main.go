package main

import (
	"github.com/caseboard/backend/internal/server"
	"github.com/caseboard/backend/internal/util"
	"github.com/caseboard/backend/pkg/logger"
	"github.com/caseboard/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	logger.Init(console.New(console.Params{
		Debug: debug,
	}))

	server.Init()
}
