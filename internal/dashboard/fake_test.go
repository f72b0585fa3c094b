// SPDX-License-Identifier: MIT

package dashboard

import (
	"context"
	"sync"

	"github.com/ManuGH/smsmanager/internal/client"
	"github.com/ManuGH/smsmanager/internal/producer"
)

const testID = "0f8fad5b-d9cb-469f-a165-70867728950e"

// fakeAPI is an in-memory backend that counts calls per operation.
type fakeAPI struct {
	mu        sync.Mutex
	producers map[string]producer.Producer
	progress  map[string]producer.Progress
	calls     map[string]int
	fail      map[string]error
	waited    bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		producers: map[string]producer.Producer{},
		progress:  map[string]producer.Progress{},
		calls:     map[string]int{},
		fail:      map[string]error{},
	}
}

func (f *fakeAPI) seed(p producer.Producer, pr producer.Progress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.producers[p.ID] = p
	f.progress[p.ID] = pr
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeAPI) ListProducers(context.Context) ([]producer.Producer, error) {
	if err := f.enter("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]producer.Producer, 0, len(f.producers))
	for _, p := range f.producers {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) GetProducer(_ context.Context, id string) (producer.Producer, error) {
	if err := f.enter("get"); err != nil {
		return producer.Producer{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.producers[id]
	if !ok {
		return p, &client.Error{StatusCode: 404, Body: "Fetched an empty result that should not be!"}
	}
	return p, nil
}

func (f *fakeAPI) GetProgress(_ context.Context, id string) (producer.Progress, error) {
	if err := f.enter("progress"); err != nil {
		return producer.Progress{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.progress[id], nil
}

func (f *fakeAPI) CreateProducer(_ context.Context, args producer.Args) (producer.Producer, error) {
	if err := f.enter("create"); err != nil {
		return producer.Producer{}, err
	}
	p := producer.Producer{
		ID: testID, Name: args.Name, NumberMessages: args.NumberMessages,
		AverageSendDelay: args.AverageSendDelay, FailureRate: args.FailureRate,
		NumSenders: args.NumSenders, Status: producer.StatusInactive,
	}
	f.seed(p, producer.Progress{MessageTimes: []int{}})
	return p, nil
}

func (f *fakeAPI) UpdateProducer(_ context.Context, id string, args producer.Args) (producer.Producer, error) {
	if err := f.enter("update"); err != nil {
		return producer.Producer{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.producers[id]
	p.Name = args.Name
	p.NumberMessages = args.NumberMessages
	p.AverageSendDelay = args.AverageSendDelay
	p.FailureRate = args.FailureRate
	p.NumSenders = args.NumSenders
	f.producers[id] = p
	return p, nil
}

func (f *fakeAPI) DeleteProducer(_ context.Context, id string) (string, error) {
	if err := f.enter("delete"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.producers, id)
	delete(f.progress, id)
	return "Producer deleted.", nil
}

func (f *fakeAPI) GenerateMessages(_ context.Context, id string) (int, error) {
	if err := f.enter("generate"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.producers[id]
	p.Status = producer.StatusGenerated
	f.producers[id] = p
	f.progress[id] = producer.Progress{NumberMessagesCreated: p.NumberMessages, MessageTimes: []int{}}
	return p.NumberMessages, nil
}

func (f *fakeAPI) ActivateProducer(_ context.Context, id string) (string, error) {
	if err := f.enter("activate"); err != nil {
		return "", err
	}
	return "Sending started", nil
}

func (f *fakeAPI) ActivateProducerAndWait(_ context.Context, id string) (string, error) {
	if err := f.enter("activate"); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.waited = true
	f.mu.Unlock()
	return "All items processed.", nil
}
