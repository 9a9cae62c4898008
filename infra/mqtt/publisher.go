package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/railfleet/core/monitoring"
	"github.com/kilianp07/railfleet/core/model"
	"github.com/kilianp07/railfleet/core/schedule"
	"github.com/kilianp07/railfleet/infra/logger"
)

// QoS keys looked up in Config.QoS.
const (
	QoSRecommendation = "recommendation"
	QoSMetrics        = "metrics"
	QoSStatus         = "status"
)

// Envelope wraps every published payload.
type Envelope struct {
	MessageID string    `json:"message_id"`
	RunID     string    `json:"run_id,omitempty"`
	SentAt    time.Time `json:"sent_at"`
	Payload   any       `json:"payload"`
}

// StatusMessage is published when an operator changes a trainset status.
type StatusMessage struct {
	TrainsetID string       `json:"trainset_id"`
	From       model.Status `json:"from"`
	To         model.Status `json:"to"`
}

// Publisher sends recommendations and fleet metrics to the broker.
type Publisher struct {
	cli        pahoClient
	cfg        Config
	log        logger.Logger
	mon        coremon.Monitor
	maxRetries int
	backoff    time.Duration
	now        func() time.Time
}

// NewPublisher connects to the MQTT broker.
func NewPublisher(cfg Config, mon coremon.Monitor) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	if mon == nil {
		mon = coremon.NopMonitor{}
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Publisher{
		cli:        c,
		cfg:        cfg,
		log:        log,
		mon:        mon,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		now:        time.Now,
	}, nil
}

// RecommendationTopic returns the topic for a trainset recommendation.
func (p *Publisher) RecommendationTopic(trainsetID string) string {
	return fmt.Sprintf("%s/trainsets/%s/recommendation", p.cfg.TopicPrefix, trainsetID)
}

// StatusTopic returns the topic for trainset status changes.
func (p *Publisher) StatusTopic(trainsetID string) string {
	return fmt.Sprintf("%s/trainsets/%s/status", p.cfg.TopicPrefix, trainsetID)
}

// MetricsTopic returns the fleet metrics topic.
func (p *Publisher) MetricsTopic() string {
	return p.cfg.TopicPrefix + "/fleet/metrics"
}

// ScheduleTopic returns the topic carrying run summaries.
func (p *Publisher) ScheduleTopic() string {
	return p.cfg.TopicPrefix + "/schedule/summary"
}

// PublishSchedule publishes one message per recommendation followed by the
// run summary. It stops at the first failure.
func (p *Publisher) PublishSchedule(runID string, res schedule.Result) error {
	qos := p.cfg.qos(QoSRecommendation)
	for _, rec := range res.Recommendations {
		if err := p.publish(p.RecommendationTopic(rec.TrainsetID), qos, false, runID, rec); err != nil {
			return err
		}
	}
	return p.publish(p.ScheduleTopic(), qos, false, runID, struct {
		Summary        schedule.Summary `json:"summary"`
		InductionOrder []string         `json:"induction_order"`
	}{res.Summary, res.InductionOrder})
}

// PublishFleetMetrics publishes the rollup as a retained message so new
// subscribers see the latest state.
func (p *Publisher) PublishFleetMetrics(m model.FleetMetrics) error {
	return p.publish(p.MetricsTopic(), p.cfg.qos(QoSMetrics), true, "", m)
}

// PublishStatusChange publishes an operator status change.
func (p *Publisher) PublishStatusChange(msg StatusMessage) error {
	return p.publish(p.StatusTopic(msg.TrainsetID), p.cfg.qos(QoSStatus), true, "", msg)
}

func (p *Publisher) publish(topic string, qos byte, retained bool, runID string, payload any) error {
	env := Envelope{MessageID: uuid.NewString(), RunID: runID, SentAt: p.now().UTC(), Payload: payload}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, retained, data)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugw("published", map[string]any{"topic": topic, "message_id": env.MessageID})
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	p.mon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic})
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *Publisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
