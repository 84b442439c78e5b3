// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"errors"
	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-hps/hps"
	"github.com/diffeo/go-hps/hpstest"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/check.v1"
	"testing"
	"time"
)

// PollerSuite runs pollers against a fake server on a mock clock.
type PollerSuite struct {
	Clock  *clock.Mock
	Server *hpstest.Server
	JMS    *JMSAPI
	Stop   chan struct{}
}

func init() {
	check.Suite(&PollerSuite{})
}

func Test(t *testing.T) {
	check.TestingT(t)
}

func (s *PollerSuite) SetUpTest(c *check.C) {
	s.Clock = clock.NewMock()
	s.Server = hpstest.New()
	s.Server.AddUser("u", "p")
	logger, _ := logtest.NewNullLogger()
	client, err := New(context.Background(), Config{
		URL:      s.Server.URL,
		Username: "u",
		Password: "p",
		Logger:   logger,
		Clock:    s.Clock,
	})
	c.Assert(err, check.IsNil)
	s.JMS, err = client.JMS()
	c.Assert(err, check.IsNil)

	// Keep time moving so pollers never block for long.
	s.Stop = make(chan struct{})
	go func(stop chan struct{}, mock *clock.Mock) {
		for {
			select {
			case <-stop:
				return
			default:
				mock.Add(100 * time.Millisecond)
			}
		}
	}(s.Stop, s.Clock)
}

func (s *PollerSuite) TearDownTest(c *check.C) {
	close(s.Stop)
	s.Server.Close()
}

// startCopy creates a project and starts copying it, returning the
// operation id.
func (s *PollerSuite) startCopy(c *check.C, polls int) string {
	s.Server.Put(hpstest.JMS, "projects", map[string]interface{}{"id": "p1"})
	s.Server.SetOperationOutcome(hpstest.OperationOutcome{Polls: polls})
	project := &hps.Project{}
	project.ID = hps.Some("p1")
	opID, err := s.JMS.CopyProjects(context.Background(), []*hps.Project{project})
	c.Assert(err, check.IsNil)
	return opID
}

func (s *PollerSuite) operationPolls(opID string) int {
	var n int
	for _, r := range s.Server.APIRequests() {
		if r.Path == "/jms/api/v1/operations/"+opID {
			n++
		}
	}
	return n
}

func (s *PollerSuite) TestWaitBackoff(c *check.C) {
	opID := s.startCopy(c, 4)
	start := s.Clock.Now()
	p := Poller{Clock: s.Clock, Logger: s.JMS.Client().Logger()}
	op, err := p.Wait(context.Background(), s.JMS.Endpoint, opID)
	c.Assert(err, check.IsNil)
	finished, succeeded := op.Done()
	c.Check(finished, check.Equals, true)
	c.Check(succeeded, check.Equals, true)
	c.Check(s.operationPolls(opID), check.Equals, 5)
	// Four waits of at least a quarter second each, after jitter.
	c.Check(s.Clock.Now().Sub(start) >= time.Second, check.Equals, true)
}

func (s *PollerSuite) TestWaitTimeout(c *check.C) {
	opID := s.startCopy(c, 1000000)
	p := Poller{MaxElapsed: 3 * time.Second, Clock: s.Clock}
	_, err := p.Wait(context.Background(), s.JMS.Endpoint, opID)
	ce, ok := err.(*hps.ClientError)
	c.Assert(ok, check.Equals, true)
	c.Check(ce.Reason, check.Equals, "Operation "+opID+" did not finish within 3s")
	c.Check(ce.Description, check.Equals, ErrOperationTimeout.Error())
	c.Check(errors.Is(err, ErrOperationTimeout), check.Equals, true)
}

func (s *PollerSuite) TestWaitFixed(c *check.C) {
	opID := s.startCopy(c, 2)
	start := s.Clock.Now()
	op, err := Poller{Clock: s.Clock}.WaitFixed(context.Background(), s.JMS.Endpoint, opID, time.Second)
	c.Assert(err, check.IsNil)
	finished, _ := op.Done()
	c.Check(finished, check.Equals, true)
	c.Check(s.operationPolls(opID), check.Equals, 3)
	c.Check(s.Clock.Now().Sub(start) >= 2*time.Second, check.Equals, true)
}

func (s *PollerSuite) TestWaitForOperation(c *check.C) {
	opID := s.startCopy(c, 0)
	op, err := s.JMS.WaitForOperation(context.Background(), opID, time.Minute)
	c.Assert(err, check.IsNil)
	c.Check(op.ObjectID(), check.Equals, opID)
	c.Check(op.Status.ValueOr(""), check.Equals, "completed")
}
