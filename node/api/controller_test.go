package api_test

import (
	"bytes"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"telemesh.io/prototype/node/api"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// fakeService records calls and serves canned responses.
type fakeService struct {
	chain     api.ChainResponse
	cleared   bool
	err       error
	peers     api.PeersResponse
	pool      api.PoolResponse
	role      string
	saved     bool
	sensorID  string
	status    api.StatusResponse
	telemetry api.TelemetryResponse
	timeFrom  uint32
	timeTo    uint32
}

func (f *fakeService) Chain() (api.ChainResponse, int, error) {
	if f.err != nil {
		return api.ChainResponse{}, http.StatusInternalServerError, f.err
	}
	return f.chain, http.StatusOK, nil
}

func (f *fakeService) Clear() (int, error) {
	if f.err != nil {
		return http.StatusInternalServerError, f.err
	}
	f.cleared = true
	return http.StatusOK, nil
}

func (f *fakeService) Peers() (api.PeersResponse, int, error) {
	return f.peers, http.StatusOK, nil
}

func (f *fakeService) Pool() (api.PoolResponse, int, error) {
	return f.pool, http.StatusOK, nil
}

func (f *fakeService) Save() (int, error) {
	if f.err != nil {
		return http.StatusInternalServerError, f.err
	}
	f.saved = true
	return http.StatusOK, nil
}

func (f *fakeService) SetRole(role string) (api.RoleResponse, int, error) {
	if role != "sensor" && role != "validator" && role != "archive" {
		return api.RoleResponse{}, http.StatusBadRequest, errors.New("unknown role")
	}
	f.role = role
	return api.RoleResponse{Role: role}, http.StatusOK, nil
}

func (f *fakeService) Status() (api.StatusResponse, int, error) {
	return f.status, http.StatusOK, nil
}

func (f *fakeService) Telemetry(sensorID string, from, to uint32) (api.TelemetryResponse, int, error) {
	f.sensorID = sensorID
	f.timeFrom = from
	f.timeTo = to
	return f.telemetry, http.StatusOK, nil
}

var _ = Describe("Controller", func() {
	var ctrl api.Controller
	var srv *fakeService
	var srvr *httptest.Server

	BeforeEach(func() {
		gin.SetMode("test")
		srv = &fakeService{}
		ctrl = api.NewWithService(srv)
		router := gin.Default()
		ctrl.RegisterRoutes(router)
		srvr = httptest.NewServer(router)
	})

	AfterEach(func() {
		srvr.Close()
	})

	Describe("GET /api/status", func() {
		It("should return the node snapshot", func() {
			srv.status = api.StatusResponse{
				Address:     "AA:BB:CC:DD:EE:01",
				Role:        "validator",
				TotalBlocks: 7,
			}
			res, err := http.Get(srvr.URL + "/api/status")
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(ContainSubstring(`"address":"AA:BB:CC:DD:EE:01"`))
			Expect(string(body)).To(ContainSubstring(`"role":"validator"`))
			Expect(string(body)).To(ContainSubstring(`"total_blocks":7`))
		})
	})

	Describe("GET /api/chain", func() {
		It("should list the retained headers", func() {
			srv.chain = api.ChainResponse{Headers: []api.HeaderInfo{
				{Index: 0, Validator: "AA:BB:CC:DD:EE:01"},
				{Index: 1, Validator: "AA:BB:CC:DD:EE:02"},
			}}
			res, err := http.Get(srvr.URL + "/api/chain")
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(ContainSubstring(`"index":1`))
			Expect(string(body)).To(ContainSubstring(`"validator":"AA:BB:CC:DD:EE:02"`))
		})

		When("the service fails", func() {
			It("should return the error shape", func() {
				srv.err = errors.New("storage went away")
				res, err := http.Get(srvr.URL + "/api/chain")
				Expect(err).To(BeNil())
				defer res.Body.Close()
				Expect(res.StatusCode).To(Equal(http.StatusInternalServerError))

				body, _ := ioutil.ReadAll(res.Body)
				Expect(string(body)).To(Equal(`{"error":"storage went away"}`))
			})
		})
	})

	Describe("GET /api/telemetry", func() {
		It("should pass the query window through", func() {
			url := fmt.Sprintf("%s/api/telemetry?sensor=sensor_001&from=100&to=200", srvr.URL)
			res, err := http.Get(url)
			Expect(err).To(BeNil())
			res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(srv.sensorID).To(Equal("sensor_001"))
			Expect(srv.timeFrom).To(Equal(uint32(100)))
			Expect(srv.timeTo).To(Equal(uint32(200)))
		})

		It("should default to an unbounded window", func() {
			res, err := http.Get(srvr.URL + "/api/telemetry?sensor=sensor_001")
			Expect(err).To(BeNil())
			res.Body.Close()
			Expect(srv.timeFrom).To(Equal(uint32(0)))
			Expect(srv.timeTo).To(Equal(^uint32(0)))
		})

		When("the window is not numeric", func() {
			It("should reject the request", func() {
				res, err := http.Get(srvr.URL + "/api/telemetry?from=yesterday")
				Expect(err).To(BeNil())
				res.Body.Close()
				Expect(res.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("POST /api/role", func() {
		It("should apply a valid override", func() {
			res, err := http.Post(srvr.URL+"/api/role", "application/json",
				bytes.NewBufferString(`{"role":"archive"}`))
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(srv.role).To(Equal("archive"))

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(Equal(`{"role":"archive"}`))
		})

		When("the role is unknown", func() {
			It("should return a bad request", func() {
				res, err := http.Post(srvr.URL+"/api/role", "application/json",
					bytes.NewBufferString(`{"role":"overlord"}`))
				Expect(err).To(BeNil())
				res.Body.Close()
				Expect(res.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(srv.role).To(Equal(""))
			})
		})
	})

	Describe("POST /api/save", func() {
		It("should trigger a snapshot", func() {
			res, err := http.Post(srvr.URL+"/api/save", "application/json", nil)
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(srv.saved).To(BeTrue())

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(Equal(`{"status":"saved"}`))
		})
	})

	Describe("POST /api/clear", func() {
		It("should wipe the snapshots", func() {
			res, err := http.Post(srvr.URL+"/api/clear", "application/json", nil)
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(srv.cleared).To(BeTrue())

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(Equal(`{"status":"cleared"}`))
		})

		When("the service fails", func() {
			It("should surface the error", func() {
				srv.err = errors.New("storage went away")
				res, err := http.Post(srvr.URL+"/api/clear", "application/json", nil)
				Expect(err).To(BeNil())
				res.Body.Close()
				Expect(res.StatusCode).To(Equal(http.StatusInternalServerError))
				Expect(srv.cleared).To(BeFalse())
			})
		})
	})

	Describe("GET /api/peers", func() {
		It("should list the known peers", func() {
			srv.peers = api.PeersResponse{Peers: []string{"AA:BB:CC:DD:EE:02"}}
			res, err := http.Get(srvr.URL + "/api/peers")
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(Equal(`{"peers":["AA:BB:CC:DD:EE:02"]}`))
		})
	})

	Describe("GET /api/pool", func() {
		It("should list the pending transactions", func() {
			srv.pool = api.PoolResponse{
				Capacity: 20,
				Transactions: []api.TransactionInfo{
					{TxHash: "8f3b99315b32a5f1", Reading: api.ReadingInfo{SensorID: "sensor_001"}},
				},
			}
			res, err := http.Get(srvr.URL + "/api/pool")
			Expect(err).To(BeNil())
			defer res.Body.Close()
			Expect(res.StatusCode).To(Equal(http.StatusOK))

			body, _ := ioutil.ReadAll(res.Body)
			Expect(string(body)).To(ContainSubstring(`"capacity":20`))
			Expect(string(body)).To(ContainSubstring(`"tx_hash":"8f3b99315b32a5f1"`))
			Expect(string(body)).To(ContainSubstring(`"sensor_id":"sensor_001"`))
		})
	})
})
