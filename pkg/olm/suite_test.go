package olm_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOlmSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Olm Suite")
}
