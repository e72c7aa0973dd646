package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideamans/go-sheettable/dialogue"
)

const updatesJSON = `[
  {"update_id": 1, "message": {"message_id": 10, "date": 1, "chat": {"id": 99, "type": "group"},
    "from": {"id": 5, "is_bot": false, "first_name": "Eve", "username": "eve"}, "text": "/lab"}},
  {"update_id": 2, "edited_message": {"message_id": 11, "date": 1, "chat": {"id": 42, "type": "private"},
    "from": {"id": 7, "is_bot": false, "first_name": "Ann", "username": "ann"}, "text": "edited"}},
  {"update_id": 3, "message": {"message_id": 12, "date": 1, "chat": {"id": 42, "type": "private"},
    "from": {"id": 7, "is_bot": false, "first_name": "Ann", "username": "ann"}, "text": "/lab"}}
]`

// fakeAPI serves the subset of the Bot API used by Bot.
type fakeAPI struct {
	mu   sync.Mutex
	sent []string // chat_id:text
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok": true, "result": {"id": 1, "is_bot": true, "first_name": "Lab", "username": "labbot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		f.sent = append(f.sent, r.PostForm.Get("chat_id")+":"+r.PostForm.Get("text"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok": true, "result": {"message_id": 100, "date": 1, "chat": {"id": 42, "type": "private"}}}`)
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		if offset := r.PostForm.Get("offset"); offset == "" || offset == "0" {
			fmt.Fprintf(w, `{"ok": true, "result": %s}`, updatesJSON)
			return
		}
		time.Sleep(20 * time.Millisecond)
		fmt.Fprint(w, `{"ok": true, "result": []}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"ok": false, "error_code": 404, "description": "Not Found"}`)
	}
}

func (f *fakeAPI) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestBot(t *testing.T, opts Options) (*Bot, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return NewWithAPI(api, opts), fake
}

type handlerFunc func(ctx context.Context, msg dialogue.Message) error

func (f handlerFunc) Handle(ctx context.Context, msg dialogue.Message) error { return f(ctx, msg) }

func TestBot_Username(t *testing.T) {
	bot, _ := newTestBot(t, Options{})
	assert.Equal(t, "labbot", bot.Username())
}

func TestBot_Send(t *testing.T) {
	bot, fake := newTestBot(t, Options{})

	require.NoError(t, bot.Send(context.Background(), 42, "Send the link"))
	assert.Equal(t, []string{"42:Send the link"}, fake.messages())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, bot.Send(ctx, 42, "late"), context.Canceled)
	assert.Len(t, fake.messages(), 1)
}

func TestBot_Run(t *testing.T) {
	bot, _ := newTestBot(t, Options{
		PollTimeout: time.Second,
		AllowChat:   func(id int64) bool { return id == 42 },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []dialogue.Message
	h := handlerFunc(func(_ context.Context, msg dialogue.Message) error {
		got = append(got, msg)
		cancel()
		return nil
	})

	require.NoError(t, bot.Run(ctx, h))
	require.Len(t, got, 1)
	assert.Equal(t, dialogue.Message{ChatID: 42, UserID: 7, Username: "ann", Text: "/lab"}, got[0])
}

func TestBot_RunHandlesUsersConcurrently(t *testing.T) {
	bot, _ := newTestBot(t, Options{PollTimeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// eve (user 5) arrives first and waits until ann (user 7) is handled.
	annHandled := make(chan struct{})
	var mu sync.Mutex
	var order []string
	h := handlerFunc(func(ctx context.Context, msg dialogue.Message) error {
		if msg.UserID == 5 {
			select {
			case <-annHandled:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		mu.Lock()
		order = append(order, msg.Username)
		mu.Unlock()
		if msg.UserID == 7 {
			close(annHandled)
		} else {
			cancel()
		}
		return nil
	})

	require.NoError(t, bot.Run(ctx, h))
	assert.Equal(t, []string{"ann", "eve"}, order)
}

func TestDispatcher_KeepsUserOrder(t *testing.T) {
	var mu sync.Mutex
	got := map[int64][]string{}
	d := newDispatcher(func(msg dialogue.Message) {
		time.Sleep(time.Millisecond)
		mu.Lock()
		got[msg.UserID] = append(got[msg.UserID], msg.Text)
		mu.Unlock()
	})

	for i := 0; i < 5; i++ {
		for _, user := range []int64{1, 2, 3} {
			d.dispatch(dialogue.Message{ChatID: 100, UserID: user, Text: fmt.Sprint(i)})
		}
	}
	d.dispatch(dialogue.Message{ChatID: -100, Text: "anonymous"})
	d.wait()

	for _, user := range []int64{1, 2, 3} {
		assert.Equal(t, []string{"0", "1", "2", "3", "4"}, got[user], "user %d", user)
	}
	assert.Equal(t, []string{"anonymous"}, got[0])
	assert.Empty(t, d.queues)
}

func TestBot_RunRequiresHandler(t *testing.T) {
	bot, _ := newTestBot(t, Options{})
	assert.Error(t, bot.Run(context.Background(), nil))
}

func TestToMessage(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
		want   dialogue.Message
		ok     bool
	}{
		{name: "no message", update: tgbotapi.Update{UpdateID: 1}},
		{
			name: "empty text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: 1},
			}},
		},
		{
			name: "anonymous sender",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: -100},
				Text: "https://example.com/lab1",
			}},
			want: dialogue.Message{ChatID: -100, Text: "https://example.com/lab1"},
			ok:   true,
		},
		{
			name: "user message",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				From: &tgbotapi.User{ID: 7, UserName: "ann"},
				Chat: &tgbotapi.Chat{ID: 42},
				Text: "/lab",
			}},
			want: dialogue.Message{ChatID: 42, UserID: 7, Username: "ann", Text: "/lab"},
			ok:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toMessage(tt.update)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
