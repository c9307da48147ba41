package integration

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	mcd "github.com/lauterbach-mcd/mcd-client"
	"github.com/lauterbach-mcd/mcd-client/internal/fakeserver"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MCD Client Integration Suite")
}

var _ = Describe("MCD client against a fake server", func() {
	var (
		srv    *fakeserver.Server
		client *mcd.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error
		srv, err = fakeserver.New()
		Expect(err).NotTo(HaveOccurred())

		cfg, err := mcd.ParseConfig(srv.Addr())
		Expect(err).NotTo(HaveOccurred())
		client = mcd.NewClient(cfg)
		ctx = context.Background()
	})

	AfterEach(func() {
		client.Exit()
		srv.Close()
	})

	Describe("server lifecycle", func() {
		It("opens and closes a server session", func() {
			sh, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())
			Expect(sh.Host).To(Equal("127.0.0.1"))

			Expect(client.CloseServer(ctx, sh)).To(Succeed())

			err = client.CloseServer(ctx, sh)
			Expect(mcd.IsCode(err, mcd.CodeUnknownServer)).To(BeTrue())
		})
	})

	Describe("enumeration", func() {
		It("walks systems, devices and cores, then opens a core", func() {
			_, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())

			total, _, err := client.QrySystems(ctx, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(uint32(1)))

			_, systems, err := client.QrySystems(ctx, 0, total)
			Expect(err).NotTo(HaveOccurred())
			Expect(systems).To(HaveLen(1))

			_, devices, err := client.QryDevices(ctx, systems[0], 0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(devices).To(HaveLen(1))

			_, cores, err := client.QryCores(ctx, devices[0], 0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(cores).To(HaveLen(1))

			ch, err := client.OpenCore(ctx, cores[0], nil)
			Expect(err).NotTo(HaveOccurred())
			defer client.CloseCore(ctx, ch)

			// the core database was populated during open
			nSpaces, _, err := client.QryMemSpaces(ch.UID, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(nSpaces).To(BeNumerically(">", 0))
		})
	})

	Describe("register access", func() {
		It("reads a register through a transaction list", func() {
			_, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())

			ch := openFirstCore(ctx, client)
			defer client.CloseCore(ctx, ch)

			n, _, err := client.QryRegMap(ch.UID, 0, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically(">", 0))

			_, regs, err := client.QryRegMap(ch.UID, 0, n, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs).To(HaveLen(int(n)))

			tx := mcd.Transaction{
				Addr:        mcd.Addr{Address: regs[0].AddrOffset, MemSpaceID: regs[0].MemSpaceID},
				AccessType:  mcd.AccessRead,
				AccessWidth: 4,
				NumBytesReq: 4,
				Data:        make([]byte, 4),
			}
			out, err := client.ExecuteTxList(ctx, ch, []mcd.Transaction{tx})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].NumBytesOk).To(Equal(uint32(4)))
		})

		It("executes a multi-transaction list write-then-read in one call", func() {
			_, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())

			ch := openFirstCore(ctx, client)
			defer client.CloseCore(ctx, ch)

			payload := []byte{0x11, 0x22, 0x33, 0x44}
			txs := []mcd.Transaction{
				{
					Addr:        mcd.Addr{Address: 0x400, MemSpaceID: 1},
					AccessType:  mcd.AccessWrite,
					AccessWidth: 4,
					NumBytesReq: 4,
					Data:        payload,
				},
				{
					Addr:        mcd.Addr{Address: 0x400, MemSpaceID: 1},
					AccessType:  mcd.AccessRead,
					AccessWidth: 4,
					NumBytesReq: 4,
					Data:        make([]byte, 4),
				},
			}
			out, err := client.ExecuteTxList(ctx, ch, txs)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(2))
			Expect(out[0].NumBytesOk).To(Equal(uint32(4)))
			Expect(out[1].NumBytesOk).To(Equal(uint32(4)))
			// the transactions execute in order, so the read observes
			// the preceding write
			Expect(out[1].Data).To(Equal(payload))
		})

		It("round-trips a write then a read", func() {
			_, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())

			ch := openFirstCore(ctx, client)
			defer client.CloseCore(ctx, ch)

			payload := []byte{0xCA, 0xFE, 0xBA, 0xBE}
			write := mcd.Transaction{
				Addr:        mcd.Addr{Address: 0x200, MemSpaceID: 1},
				AccessType:  mcd.AccessWrite,
				AccessWidth: 4,
				NumBytesReq: 4,
				Data:        payload,
			}
			out, err := client.ExecuteTxList(ctx, ch, []mcd.Transaction{write})
			Expect(err).NotTo(HaveOccurred())
			Expect(out[0].NumBytesOk).To(Equal(uint32(4)))

			read := mcd.Transaction{
				Addr:        mcd.Addr{Address: 0x200, MemSpaceID: 1},
				AccessType:  mcd.AccessRead,
				AccessWidth: 4,
				NumBytesReq: 4,
				Data:        make([]byte, 4),
			}
			out, err = client.ExecuteTxList(ctx, ch, []mcd.Transaction{read})
			Expect(err).NotTo(HaveOccurred())
			Expect(out[0].Data).To(Equal(payload))
		})
	})

	Describe("trigger lifecycle", func() {
		It("creates, activates, observes and removes a trigger", func() {
			_, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())

			ch := openFirstCore(ctx, client)
			defer client.CloseCore(ctx, ch)

			trig := mcd.Trigger{
				Kind: mcd.TriggerSimpleCore,
				SimpleCore: &mcd.SimpleCoreTrigger{
					StructSize: 40,
					Type:       1, // instruction hit
					Addr:       mcd.Addr{Address: 0x1000, MemSpaceID: 1},
				},
			}
			trigID, _, err := client.CreateTrig(ctx, ch.UID, trig)
			Expect(err).NotTo(HaveOccurred())
			Expect(trigID).NotTo(BeZero())

			n, _, err := client.QryTrigSet(ctx, ch.UID, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(uint32(1)))

			Expect(client.ActivateTrigSet(ctx, ch.UID)).To(Succeed())

			state, err := client.QryState(ctx, ch.UID)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.State).To(Equal(mcd.CoreStateDebug))
			Expect(state.TrigID).To(Equal(trigID))

			Expect(client.RemoveTrig(ctx, ch.UID, trigID)).To(Succeed())

			n, _, err = client.QryTrigSet(ctx, ch.UID, 0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("disconnect mid-session", func() {
		It("reports a connection error, then close-core still succeeds", func() {
			_, err := client.OpenServer(ctx, "", srv.Addr())
			Expect(err).NotTo(HaveOccurred())

			ch := openFirstCore(ctx, client)

			srv.Close()

			_, err = client.QryState(ctx, ch.UID)
			Expect(err).To(HaveOccurred())
			Expect(mcd.IsCode(err, mcd.CodeConnection)).To(BeTrue())

			// best-effort teardown against a dead server
			Expect(client.CloseCore(ctx, ch)).To(Succeed())
		})
	})
})

var _ = Describe("oversize reply handling", func() {
	It("rejects a reply whose length prefix exceeds the packet bound", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		defer ln.Close()

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			var lenBuf [4]byte
			if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
				return
			}
			rest := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
			io.ReadFull(conn, rest)
			var reply [4]byte
			binary.LittleEndian.PutUint32(reply[:], 70000)
			conn.Write(reply[:])
			var hold [1]byte
			conn.Read(hold[:])
		}()

		cfg, err := mcd.ParseConfig(ln.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		client := mcd.NewClient(cfg)
		defer client.Exit()

		_, err = client.OpenServer(context.Background(), "", "")
		Expect(err).To(HaveOccurred())
		Expect(mcd.IsCode(err, mcd.CodeConnection)).To(BeTrue())

		_, msg := mcd.LastError()
		Expect(msg).To(ContainSubstring("70000"))
	})
})

// openFirstCore enumerates down to the single fake core and opens it.
func openFirstCore(ctx context.Context, client *mcd.Client) *mcd.CoreHandle {
	GinkgoHelper()

	_, systems, err := client.QrySystems(ctx, 0, 1)
	Expect(err).NotTo(HaveOccurred())
	_, devices, err := client.QryDevices(ctx, systems[0], 0, 1)
	Expect(err).NotTo(HaveOccurred())
	_, cores, err := client.QryCores(ctx, devices[0], 0, 1)
	Expect(err).NotTo(HaveOccurred())

	ch, err := client.OpenCore(ctx, cores[0], nil)
	Expect(err).NotTo(HaveOccurred())
	return ch
}
