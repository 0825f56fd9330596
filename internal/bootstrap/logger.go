package bootstrap

import (
	"github.com/servana/eventrelay/internal/config"
	"github.com/sirupsen/logrus"
)

func BuildLogger(cfg config.Config) (*logrus.Logger, error) {
	return buildLogger(cfg)
}
