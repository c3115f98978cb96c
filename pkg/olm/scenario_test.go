package olm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"olmcore/pkg/olm"
)

var _ = Describe("A conversation between two devices", func() {
	var (
		alice, bob *olm.Account
		outbound   *olm.Session
		inbound    *olm.Session
	)

	BeforeEach(func() {
		var err error
		alice, err = olm.NewAccount()
		Expect(err).NotTo(HaveOccurred())
		bob, err = olm.NewAccount()
		Expect(err).NotTo(HaveOccurred())
		Expect(bob.GenerateOneTimeKeys(1)).To(Succeed())

		var otk olm.Curve25519PublicKey
		for _, k := range bob.OneTimeKeys() {
			otk = k
		}
		bob.MarkKeysAsPublished()

		outbound, err = alice.CreateOutboundSession(olm.SessionConfigV2(), bob.Curve25519Key(), otk)
		Expect(err).NotTo(HaveOccurred())

		msg, err := outbound.Encrypt([]byte("Hello there"))
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Type).To(Equal(olm.MessageTypePreKey))

		res, err := bob.CreateInboundSession(alice.Curve25519Key(), msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(res.Plaintext)).To(Equal("Hello there"))
		inbound = res.Session
	})

	It("consumes the one-time key", func() {
		Expect(bob.StoredOneTimeKeyCount()).To(BeZero())
		Expect(bob.OneTimeKeys()).To(BeEmpty())
	})

	It("agrees on the session id", func() {
		Expect(inbound.SessionID()).To(Equal(outbound.SessionID()))
		Expect(inbound.SessionKeys()).To(Equal(outbound.SessionKeys()))
	})

	It("survives a long exchange in both directions", func() {
		for i := 0; i < 20; i++ {
			from, to := outbound, inbound
			if i%3 == 0 {
				from, to = inbound, outbound
			}
			msg, err := from.Encrypt([]byte("message"))
			Expect(err).NotTo(HaveOccurred())
			pt, err := to.Decrypt(msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(pt)).To(Equal("message"))
		}
	})

	It("rejects a message far ahead of the chain", func() {
		reply, err := inbound.Encrypt([]byte("reply"))
		Expect(err).NotTo(HaveOccurred())
		_, err = outbound.Decrypt(reply)
		Expect(err).NotTo(HaveOccurred())

		var last olm.OlmMessage
		for i := 0; i < 2002; i++ {
			last, err = outbound.Encrypt([]byte("skip"))
			Expect(err).NotTo(HaveOccurred())
		}
		_, err = inbound.Decrypt(last)
		Expect(err).To(MatchError(olm.ErrMessageGapTooLarge))
	})

	It("survives pickling both sides", func() {
		passphrase := []byte("pickle key")
		p, err := inbound.Pickle(passphrase)
		Expect(err).NotTo(HaveOccurred())
		restored, err := olm.SessionFromPickle(p, passphrase)
		Expect(err).NotTo(HaveOccurred())

		msg, err := restored.Encrypt([]byte("from a restored session"))
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Type).To(Equal(olm.MessageTypeNormal))
		pt, err := outbound.Decrypt(msg)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(pt)).To(Equal("from a restored session"))
	})
})
