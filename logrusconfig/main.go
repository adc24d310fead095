package logrusconfig

import (
	"flag"
	"io"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var loglevel *int

// InitParam registers the -loglevel flag. Call it before flag.Parse.
func InitParam() {
	loglevel = flag.Int("loglevel", int(logrus.InfoLevel), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information. 5 shows every adapter frame")
}

// Config describes a logger. The zero value logs at panic level to stderr.
type Config struct {
	Level logrus.Level

	// Prefix is shown in front of every message
	Prefix string

	// Output defaults to stderr
	Output io.Writer
}

// Logger builds the logger. The -loglevel flag overrides Level when it was registered.
func (c Config) Logger() *logrus.Entry {
	logrus.ErrorKey = "$error"
	logger := logrus.New()
	if loglevel == nil {
		logger.SetLevel(c.Level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	if c.Output != nil {
		logger.SetOutput(c.Output)
	}

	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05.000"
	customFormatter.FullTimestamp = true
	customFormatter.PrefixPadding = 12
	customFormatter.SpacePadding = 40
	logger.SetFormatter(customFormatter)

	entry := logrus.NewEntry(logger)
	if c.Prefix != "" {
		entry = entry.WithField("prefix", c.Prefix)
	}
	return entry
}

// GetLogger returns a stderr logger at level with the given prefix
func GetLogger(level logrus.Level, prefix string) *logrus.Entry {
	return Config{Level: level, Prefix: prefix}.Logger()
}
