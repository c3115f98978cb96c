package megolm_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"olmcore/pkg/megolm"
	"olmcore/pkg/olm"
)

var _ = Describe("A room key shared over an Olm channel", func() {
	var (
		room    *megolm.GroupSession
		inbound *megolm.InboundGroupSession
	)

	BeforeEach(func() {
		var err error
		room, err = megolm.NewGroupSession(megolm.SessionConfigV1())
		Expect(err).NotTo(HaveOccurred())

		alice, err := olm.NewAccount()
		Expect(err).NotTo(HaveOccurred())
		bob, err := olm.NewAccount()
		Expect(err).NotTo(HaveOccurred())
		Expect(bob.GenerateOneTimeKeys(1)).To(Succeed())
		var otk olm.Curve25519PublicKey
		for _, k := range bob.OneTimeKeys() {
			otk = k
		}
		bob.MarkKeysAsPublished()

		channel, err := alice.CreateOutboundSession(olm.DefaultSessionConfig(), bob.Curve25519Key(), otk)
		Expect(err).NotTo(HaveOccurred())
		msg, err := channel.Encrypt([]byte(room.SessionKey().ToBase64()))
		Expect(err).NotTo(HaveOccurred())

		res, err := bob.CreateInboundSession(alice.Curve25519Key(), msg)
		Expect(err).NotTo(HaveOccurred())
		key, err := megolm.SessionKeyFromBase64(string(res.Plaintext))
		Expect(err).NotTo(HaveOccurred())
		inbound = megolm.NewInboundGroupSession(key, megolm.SessionConfigV1())
	})

	It("identifies the same session on both sides", func() {
		Expect(inbound.SessionID()).To(Equal(room.SessionID()))
		Expect(inbound.IsVerified()).To(BeTrue())
	})

	It("decrypts every room message", func() {
		for _, text := range []string{"first", "second", "third"} {
			got, err := inbound.Decrypt(room.Encrypt([]byte(text)))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(got.Plaintext)).To(Equal(text))
		}
	})

	It("forwards a later starting point to a new member", func() {
		room.Encrypt([]byte("history"))
		latest := room.Encrypt([]byte("now"))

		forwarded := megolm.ImportInboundGroupSession(inbound.ExportAt(1), megolm.SessionConfigV1())
		Expect(forwarded.IsVerified()).To(BeFalse())
		Expect(inbound.Compare(forwarded)).To(Equal(megolm.SessionOrderingBetter))

		got, err := forwarded.Decrypt(latest)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(got.Plaintext)).To(Equal("now"))
		Expect(got.MessageIndex).To(BeEquivalentTo(1))
	})
})
