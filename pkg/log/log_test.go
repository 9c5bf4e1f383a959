package log_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/brindle-bt/brindle/pkg/log"
)

func TestInfoWritesToConfiguredOutput(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	log.Info("hello")

	assert.Contains(t, buf.String(), "hello")
}

func TestDebugSuppressedUnlessEnabled(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetDebug(false)

	log.Debug("should not appear")
	assert.Empty(t, buf.String())

	log.SetDebug(true)
	log.Debug("should appear")
	assert.Contains(t, buf.String(), "should appear")

	log.SetDebug(false)
}

func TestErrFielderAttachesErrorFields(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	log.Error("failed", log.Err(errors.New("disk full")))

	out := buf.String()
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, `"type":"*errors.errorString"`)
}

func TestFieldsLogFieldsIsIdentity(t *testing.T) {
	f := log.Fields{"a": 1}
	assert.Equal(t, f, f.LogFields())
}
