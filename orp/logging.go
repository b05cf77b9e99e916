package orp

import "github.com/sirupsen/logrus"

// logger is the package-level sink for this library's sparse operational
// logging: oracle reseeds between Melbourne's two passes, and bin/bucket
// overload warnings raised just before the corresponding error is returned.
// The teacher's massifs package logs through
// github.com/datatrails/go-datatrails-common/logger (zap-backed), and
// alanbuaa-pot wires github.com/sirupsen/logrus directly as its entire
// logging package (logging/logging.go) — both reach past the standard log
// package, so this follows logrus, the simpler of the two structured
// loggers the retrieval pack actually imports.
var logger = logrus.StandardLogger()

// SetLogger overrides the package-level logger used by Bucket and
// Melbourne. Not safe to call concurrently with an in-flight Permute.
func SetLogger(l *logrus.Logger) {
	logger = l
}
