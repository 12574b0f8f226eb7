package transport

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/psuracing/racedash"
	log "github.com/sirupsen/logrus"
)

const connectTimeout = 10 * time.Second

// Client is the slice of the paho client this source actually uses.
type Client interface {
	Connect() mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Disconnect(quiesce uint)
}

// to allow testing
var newClient = func(opts *mqtt.ClientOptions) Client {
	return mqtt.NewClient(opts)
}

// Config is the broker connection read from TOML next to the binary.
type Config struct {
	Broker         string
	Username       string
	Password       string
	ClientID       string
	TelemetryTopic string
	VideoGPSTopic  string
}

// Source subscribes to the car's telemetry topic and delivers decoded
// packets on the sample channel. It implements racedash.Retryable, so
// the shared retry loop owns reconnection; the one-shot Offline channel
// additionally drives the session-level GPS fallback switch.
type Source struct {
	Config *Config

	client   Client
	lost     chan error
	sendChan chan<- racedash.RawSample

	offline     chan struct{}
	offlineOnce sync.Once

	// Sync pairs telemetry with the Pi's video GPS for the overlay
	// collaborator.
	Sync *SyncBuffer
}

func NewSource(fileName string, sendChan chan<- racedash.RawSample) (*Source, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return nil, errors.Wrap(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return NewSourceFromReader(file, sendChan)
}

func NewSourceFromReader(configReader io.Reader, sendChan chan<- racedash.RawSample) (*Source, error) {
	config := Config{
		TelemetryTopic: "car/telemetry",
		VideoGPSTopic:  "car/pi_gps",
		ClientID:       "racedash",
	}
	configData, err := io.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	if _, err := toml.Decode(string(configData), &config); err != nil {
		return nil, errors.Wrap(err, "unable to load mqtt configuration")
	}
	if config.Broker == "" {
		return nil, errors.New("mqtt configuration has no broker")
	}
	return &Source{
		Config:   &config,
		sendChan: sendChan,
		offline:  make(chan struct{}),
		Sync:     NewSyncBuffer(),
	}, nil
}

func (s *Source) Name() string {
	return "mqtt"
}

// Offline closes once, the first time the broker connection is lost.
func (s *Source) Offline() <-chan struct{} {
	return s.offline
}

func (s *Source) Open() error {
	lost := make(chan error, 1)
	opts := mqtt.NewClientOptions().
		AddBroker(s.Config.Broker).
		SetUsername(s.Config.Username).
		SetPassword(s.Config.Password).
		SetClientID(s.Config.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectTimeout(connectTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			select {
			case lost <- err:
			default:
			}
			s.signalOffline()
		})

	client := newClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		s.signalOffline()
		return errors.Errorf("timed out connecting to broker %s", s.Config.Broker)
	}
	if err := token.Error(); err != nil {
		s.signalOffline()
		return errors.Wrapf(err, "unable to connect to broker %s", s.Config.Broker)
	}

	s.client = client
	s.lost = lost
	return nil
}

func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	s.client.Disconnect(250)
	s.client = nil
	return nil
}

func (s *Source) Start(ctx context.Context) error {
	if err := s.subscribe(s.Config.TelemetryTopic, s.handleTelemetry); err != nil {
		return err
	}
	if err := s.subscribe(s.Config.VideoGPSTopic, s.handleVideoGPS); err != nil {
		return err
	}
	log.WithField("broker", s.Config.Broker).Info("subscribed to telemetry")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-s.lost:
		return errors.Wrap(err, "broker connection lost")
	}
}

func (s *Source) subscribe(topic string, handler func([]byte)) error {
	token := s.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	if !token.WaitTimeout(connectTimeout) {
		return errors.Errorf("timed out subscribing to %s", topic)
	}
	return errors.Wrapf(token.Error(), "unable to subscribe to %s", topic)
}

// decodeSample tolerates field-level type garbage: the decoder fills
// the fields it can, the offending field stays unset, and the
// normalizer substitutes its default. Only a packet that cannot be
// parsed at all is an error.
func decodeSample(payload []byte) (racedash.RawSample, error) {
	var raw racedash.RawSample
	err := json.Unmarshal(payload, &raw)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		log.WithField("field", typeErr.Field).Warn("ignoring non-numeric telemetry field")
		return raw, nil
	}
	return raw, err
}

// handleTelemetry decodes one joule-meter packet. Unparseable JSON is
// dropped here; field-level garbage is the normalizer's problem.
func (s *Source) handleTelemetry(payload []byte) {
	raw, err := decodeSample(payload)
	if err != nil {
		log.WithField("err", err).Warn("discarding malformed telemetry payload")
		return
	}
	s.Sync.AddTelemetry(raw)
	select {
	case s.sendChan <- raw:
	default:
	}
}

// handleVideoGPS only feeds the sync buffer; the Pi's GPS never drives
// the session state.
func (s *Source) handleVideoGPS(payload []byte) {
	raw, err := decodeSample(payload)
	if err != nil {
		log.WithField("err", err).Warn("discarding malformed video gps payload")
		return
	}
	s.Sync.AddVideoGPS(raw)
}

func (s *Source) signalOffline() {
	s.offlineOnce.Do(func() {
		close(s.offline)
	})
}
