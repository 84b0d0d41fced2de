// Package logging provides one named sub-logger per subsystem, built on
// github.com/sirupsen/logrus fields to tag each subsystem's output.
package logging

import "github.com/sirupsen/logrus"

// Subsystem returns a logger tagged with the given subsystem name, e.g.
// logging.Subsystem("GDAG") for the GHOSTDAG manager.
func Subsystem(name string) *logrus.Entry {
	return logrus.WithField("subsystem", name)
}
