package connector

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"replydesk/domain"
)

const (
	simulatorMinLatency = 50 * time.Millisecond
	simulatorMaxLatency = 150 * time.Millisecond
	simulatorFetchOdds  = 0.4
)

// simProfile is what a simulated source talks like: who writes there and
// what they write. Keyed per source so a simulated linkedin produces
// recruiter traffic while a simulated telegram produces family chatter.
type simProfile struct {
	senders   []string
	templates []string
}

var simulatorProfiles = map[domain.Source]simProfile{
	domain.SourceLinkedin: {
		senders: []string{"recruiter.dana@talentlab.io", "hiring.manager@bigco.com", "jordan.consultant", "alex.founder"},
		templates: []string{
			"I saw your profile and would love to connect. Open to discussing collaboration opportunities?",
			"Thanks for accepting my connection request! I'd love to learn more about your work",
			"We have an opening that matches your background, would you be open to a quick call?",
			"Following up on our partnership conversation",
			"Loved your talk at the conference, let's connect!",
		},
	},
	domain.SourceGmail: {
		senders: []string{"mark@clientcorp.com", "colleague@company.com", "billing@vendor.net", "support.seeker99"},
		templates: []string{
			"Hello, I'm interested in your services. Could you send more details about your pricing?",
			"Can you review the latest project proposal when you have a chance?",
			"Quick question about the invoice you sent last week",
			"The app keeps crashing after the last update, error code 502",
		},
	},
	domain.SourceTelegram: {
		senders: []string{"aunt.julia", "old.friend.max", "sam_the_neighbor", "mom"},
		templates: []string{
			"Hey! Are you free for a quick call tomorrow?",
			"Hi! Are we still on for dinner this weekend?",
			"Thanks for the help with the project!",
			"Miss you! Call me when you can",
		},
	},
	domain.SourceFacebook: {
		senders: []string{"old.friend.max", "sam_the_neighbor", "cousin.ella"},
		templates: []string{
			"Happy birthday!! Hope you have an amazing day",
			"Are you going to the event this weekend?",
			"Loved the photos from your trip!",
		},
	},
	domain.SourceInstagram: {
		senders: []string{"follower.kai", "deals@brightoffers.net", "studio.promo"},
		templates: []string{
			"Love your latest post! Where did you get that setup?",
			"Special offer just for you: 20% off the annual plan",
			"Your free trial is about to expire, upgrade today",
		},
	},
	domain.SourceSlack: {
		senders: []string{"teammate.ray", "oncall.iris", "pm.claire"},
		templates: []string{
			"need help, the deploy issue is back on staging",
			"can we schedule a call about the quarterly agenda?",
			"the error dashboard looks off since the last release, can you check?",
		},
	},
}

// defaultProfile backs sources without a tuned table.
var defaultProfile = simProfile{
	senders: []string{"someone.new", "old.friend.max"},
	templates: []string{
		"Quick question, do you have a minute this week?",
		"Following up on my last message",
	},
}

func profileFor(source domain.Source) simProfile {
	if profile, ok := simulatorProfiles[source]; ok {
		return profile
	}
	return defaultProfile
}

// Simulator mimics a real connector: it sleeps like a network call and
// sometimes hands back a few messages from its source's profile. Callers
// cannot tell it apart from the variant it replaces.
type Simulator struct {
	state
	log     *slog.Logger
	profile simProfile

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewSimulator(log *slog.Logger, source domain.Source, seed int64) *Simulator {
	return &Simulator{
		state:   newState(source, domain.ModeSimulated, budgetFor(source)),
		log:     log,
		profile: profileFor(source),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Connect(ctx context.Context) error {
	if err := s.cachedFailure(); err != nil {
		return err
	}
	if err := s.sleep(ctx); err != nil {
		return err
	}
	return s.recordConnect(nil)
}

func (s *Simulator) FetchMessages(ctx context.Context) ([]domain.RawMessage, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	if s.rng.Float64() > simulatorFetchOdds {
		return nil, nil
	}

	count := 1 + s.rng.Intn(3)
	messages := make([]domain.RawMessage, 0, count)
	for i := 0; i < count; i++ {
		messages = append(messages, domain.RawMessage{
			Source:     s.source,
			Sender:     s.profile.senders[s.rng.Intn(len(s.profile.senders))],
			Content:    s.profile.templates[s.rng.Intn(len(s.profile.templates))],
			ReceivedAt: time.Now().Add(-time.Duration(s.rng.Intn(300)) * time.Second),
		})
	}
	return messages, nil
}

func (s *Simulator) SendMessage(ctx context.Context, recipient, content string) error {
	if err := s.begin(); err != nil {
		return err
	}
	if err := s.sleep(ctx); err != nil {
		return err
	}
	s.log.Debug("simulated delivery", "source", s.source, "recipient", recipient, "length", len(content))
	return nil
}

func (s *Simulator) sleep(ctx context.Context) error {
	s.rngMu.Lock()
	latency := simulatorMinLatency + time.Duration(s.rng.Int63n(int64(simulatorMaxLatency-simulatorMinLatency)))
	s.rngMu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(latency):
		return nil
	}
}
