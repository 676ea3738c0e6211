package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/colorworks/lackwerk/internal/clock"
	"github.com/colorworks/lackwerk/internal/config"
	"github.com/colorworks/lackwerk/internal/logger"
	"github.com/colorworks/lackwerk/internal/migration"
	"github.com/colorworks/lackwerk/internal/server"
	"github.com/colorworks/lackwerk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
