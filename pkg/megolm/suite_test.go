package megolm_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMegolmSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Megolm Suite")
}
