package services

import (
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// NetworkService keeps a live network-reachability flag by probing a TCP
// endpoint in the background. Reads are non-blocking; embedders with a
// platform reachability signal can push it through SetReachable instead.
type NetworkService struct {
	context.DefaultService

	probeAddr string
	interval  time.Duration
	timeout   time.Duration

	reachable atomic.Bool
	stop      chan struct{}
}

const NETWORK_SVC = "network_svc"

func NewNetworkService(probeAddr string) *NetworkService {
	return &NetworkService{
		probeAddr: probeAddr,
		interval:  15 * time.Second,
		timeout:   3 * time.Second,
	}
}

func (svc NetworkService) Id() string {
	return NETWORK_SVC
}

func (svc *NetworkService) Configure(ctx *context.Context) error {
	if svc.probeAddr == "" {
		svc.probeAddr = os.Getenv("NETWORK_PROBE_ADDR")
	}
	if svc.probeAddr == "" {
		svc.probeAddr = "1.1.1.1:443"
	}

	if svc.interval == 0 {
		svc.interval = 15 * time.Second
		if s := os.Getenv("NETWORK_PROBE_INTERVAL_SECONDS"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
				svc.interval = time.Duration(secs) * time.Second
			}
		}
	}
	if svc.timeout == 0 {
		svc.timeout = 3 * time.Second
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *NetworkService) Start() error {
	svc.stop = make(chan struct{})
	svc.reachable.Store(svc.probe())

	go svc.monitor()
	return nil
}

func (svc *NetworkService) Shutdown() {
	if svc.stop != nil {
		close(svc.stop)
	}
}

// Reachable returns the last observed network state without blocking.
func (svc *NetworkService) Reachable() bool {
	return svc.reachable.Load()
}

// SetReachable overrides the probed state, for embedders that already
// monitor connectivity at the platform layer.
func (svc *NetworkService) SetReachable(up bool) {
	svc.reachable.Store(up)
}

func (svc *NetworkService) monitor() {
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-svc.stop:
			return
		case <-ticker.C:
			up := svc.probe()
			if up != svc.reachable.Swap(up) {
				log.WithField("reachable", up).Info("Network reachability changed")
			}
		}
	}
}

func (svc *NetworkService) probe() bool {
	conn, err := net.DialTimeout("tcp", svc.probeAddr, svc.timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
