package database_test

import (
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	return logging.Discard()
}
