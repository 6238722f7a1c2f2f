package wrbuf_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32p/bus"
	"github.com/sarchlab/rv32p/wrbuf"
)

func TestWrbuf(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Write Buffer Suite")
}

type captureResponder struct {
	acked []bus.Transaction
	stall int
}

func (c *captureResponder) Step(req bus.Transaction) bus.Transaction {
	if c.stall > 0 {
		c.stall--
		return bus.Transaction{}
	}
	c.acked = append(c.acked, req)
	req.Ack = true
	return req
}

var _ = Describe("Buffer", func() {
	It("reports not ready once full and ready again after draining", func() {
		r := &captureResponder{}
		b := wrbuf.New(2, r)

		Expect(b.Ready()).To(BeTrue())
		b.Push(wrbuf.Entry{WordAddr: 0x100, ByteMask: 0b1111, Data: 1})
		b.Push(wrbuf.Entry{WordAddr: 0x104, ByteMask: 0b1111, Data: 2})
		Expect(b.Ready()).To(BeFalse())

		Expect(b.Tick()).To(BeTrue())
		Expect(b.Ready()).To(BeTrue())
	})

	It("drains entries in FIFO order", func() {
		r := &captureResponder{}
		b := wrbuf.New(4, r)
		b.Push(wrbuf.Entry{WordAddr: 0x100, ByteMask: 0b1111, Data: 0xAA})
		b.Push(wrbuf.Entry{WordAddr: 0x104, ByteMask: 0b1111, Data: 0xBB})

		b.Tick()
		b.Tick()

		Expect(r.acked).To(HaveLen(2))
		Expect(r.acked[0].Addr).To(Equal(uint32(0x100)))
		Expect(r.acked[1].Addr).To(Equal(uint32(0x104)))
	})

	It("reports Empty only once every posted write has drained", func() {
		r := &captureResponder{}
		b := wrbuf.New(2, r)
		Expect(b.Empty()).To(BeTrue())

		b.Push(wrbuf.Entry{WordAddr: 0x100, ByteMask: 0b1111, Data: 1})
		Expect(b.Empty()).To(BeFalse())

		b.Tick()
		Expect(b.Empty()).To(BeTrue())
	})

	It("holds an entry at the head until the bus acks it", func() {
		r := &captureResponder{stall: 2}
		b := wrbuf.New(2, r)
		b.Push(wrbuf.Entry{WordAddr: 0x100, ByteMask: 0b1111, Data: 1})

		Expect(b.Tick()).To(BeFalse())
		Expect(b.Tick()).To(BeFalse())
		Expect(b.Empty()).To(BeFalse())
		Expect(b.Tick()).To(BeTrue())
		Expect(b.Empty()).To(BeTrue())
	})
})
