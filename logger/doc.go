// Package logger provides structured logging backed by zerolog.
//
// Library code obtains component loggers from the named registry:
//
//	log := logger.Get("rest")
//	log.Info("request sent", logger.Fields(logger.FieldMethod, "GET"))
//
// Applications configure output once with Init or by registering their own
// loggers before building clients.
package logger
