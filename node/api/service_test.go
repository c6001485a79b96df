package api_test

import (
	"encoding/hex"
	"net/http"

	"telemesh.io/prototype/network"
	"telemesh.io/prototype/node"
	"telemesh.io/prototype/node/api"
	"telemesh.io/prototype/telemetry"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var n *node.Node
	var service api.Service

	BeforeEach(func() {
		var err error
		n, err = node.New(&node.Config{
			Address:     "AA:BB:CC:DD:EE:01",
			NetworkName: "testmesh",
			PoolSize:    8,
			StorageType: "memory",
			Transport:   network.NewHub().Transport("AA:BB:CC:DD:EE:01"),
		})
		Expect(err).To(BeNil())
		service = api.NewService(n)
	})

	Describe("Status", func() {
		It("should report the genesis-only chain", func() {
			status, code, err := service.Status()
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusOK))
			Expect(status.Address).To(Equal("AA:BB:CC:DD:EE:01"))
			Expect(status.NetworkName).To(Equal("testmesh"))
			Expect(status.TotalBlocks).To(Equal(uint32(1)))
			Expect(status.Head).ToNot(BeNil())
			Expect(status.Head.Index).To(Equal(uint32(0)))
		})
	})

	Describe("Chain", func() {
		It("should hex-encode the digests", func() {
			chain, code, err := service.Chain()
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusOK))
			Expect(chain.Headers).To(HaveLen(1))
			raw, decodeErr := hex.DecodeString(chain.Headers[0].BlockHash)
			Expect(decodeErr).To(BeNil())
			Expect(raw).To(HaveLen(telemetry.HashSize))
		})
	})

	Describe("SetRole", func() {
		It("should apply a known role", func() {
			role, code, err := service.SetRole("archive")
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusOK))
			Expect(role.Role).To(Equal("archive"))

			status, _, _ := service.Status()
			Expect(status.Role).To(Equal("archive"))
		})

		It("should reject an unknown role", func() {
			_, code, err := service.SetRole("overlord")
			Expect(err).ToNot(BeNil())
			Expect(code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Pool", func() {
		It("should report the capacity alongside an empty pool", func() {
			pool, code, err := service.Pool()
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusOK))
			Expect(pool.Capacity).To(Equal(8))
			Expect(pool.Transactions).To(HaveLen(0))
		})
	})

	Describe("Telemetry", func() {
		It("should return nothing for an unknown sensor", func() {
			resp, code, err := service.Telemetry("sensor_001", 0, ^uint32(0))
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusOK))
			Expect(resp.Readings).To(HaveLen(0))
		})
	})

	Describe("Save", func() {
		It("should snapshot on demand", func() {
			code, err := service.Save()
			Expect(err).To(BeNil())
			Expect(code).To(Equal(http.StatusOK))
		})
	})
})
