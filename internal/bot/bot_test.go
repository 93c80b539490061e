package bot

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/avdave/steamwatch/core/telegram"
	"github.com/avdave/steamwatch/core/telegram/state"
	"github.com/avdave/steamwatch/internal/pic"

	tele "gopkg.in/telebot.v4"
)

type fakeCtx struct {
	tele.Context
	user *tele.User
	text string
	msg  *tele.Message
	data map[string]interface{}
	sent []interface{}
}

func newFakeCtx(userID int64) *fakeCtx {
	return &fakeCtx{user: &tele.User{ID: userID}, data: map[string]interface{}{}}
}

func (f *fakeCtx) Sender() *tele.User            { return f.user }
func (f *fakeCtx) Chat() *tele.Chat              { return &tele.Chat{ID: f.user.ID} }
func (f *fakeCtx) Update() tele.Update           { return tele.Update{ID: 1} }
func (f *fakeCtx) Message() *tele.Message        { return f.msg }
func (f *fakeCtx) Text() string                  { return f.text }
func (f *fakeCtx) Recipient() tele.Recipient     { return f.user }
func (f *fakeCtx) Get(key string) interface{}    { return f.data[key] }
func (f *fakeCtx) Set(key string, v interface{}) { f.data[key] = v }

func (f *fakeCtx) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, what)
	return nil
}

type fakeAPI struct {
	file    []byte
	fileErr error
	sends   int
	deletes int
}

func (a *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	a.sends++
	return &tele.Message{ID: a.sends}, nil
}

func (a *fakeAPI) Delete(msg tele.Editable) error {
	a.deletes++
	return nil
}

func (a *fakeAPI) File(file *tele.File) (io.ReadCloser, error) {
	if a.fileErr != nil {
		return nil, a.fileErr
	}
	return io.NopCloser(bytes.NewReader(a.file)), nil
}

type fakeCapturer struct {
	png []byte
	err error
}

func (f *fakeCapturer) Capture(ctx context.Context, url string) ([]byte, error) {
	return f.png, f.err
}

func testBot(t *testing.T, capturer Capturer, api *fakeAPI) (*Bot, state.Manager) {
	t.Helper()
	states := state.NewMemoryManager()
	deps := Deps{States: states, Capturer: capturer}
	if api != nil {
		deps.API = api
	}
	b := New(deps)
	b.Register(tg.NewRegistry())
	return b, states
}

func TestRegisterWiresStatesAndCallbacks(t *testing.T) {
	states := state.NewMemoryManager()
	b := New(Deps{States: states})
	reg := tg.NewRegistry()
	b.Register(reg)

	for _, st := range []state.State{
		stateAwaitTrackLink, stateAwaitTrackComment,
		stateAwaitBanLink, stateAwaitFriendLink,
		stateAwaitQRLink, stateAwaitQRPhoto,
	} {
		assert.NotNil(t, states.HandlerFor(st), string(st))
	}

	for _, cmd := range []string{"/track", "/list", "/ban", "/friend", "/qr", "/qrcut", "/cancel"} {
		_, _, ok := reg.LookupCommand(cmd)
		assert.True(t, ok, cmd)
	}

	_, ok := reg.GetCallback(cbUntrack)
	assert.True(t, ok)
	_, ok = reg.GetCallback(cbCancel)
	assert.True(t, ok)

	assert.NotNil(t, b.FSMRouter().Manager)
}

func TestStartClearsSession(t *testing.T) {
	b, states := testBot(t, nil, nil)
	c := newFakeCtx(7)

	states.SetState(context.Background(), 7, stateAwaitQRLink)
	require.NoError(t, b.handleStart(c))
	assert.False(t, states.InProgress(context.Background(), 7))

	states.SetState(context.Background(), 7, stateAwaitBanLink)
	require.NoError(t, b.handleCancel(c))
	assert.False(t, states.InProgress(context.Background(), 7))
}

func shotPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 200, 200))))
	return buf.Bytes()
}

func TestImageFlowDeletesWaitMessage(t *testing.T) {
	api := &fakeAPI{}
	b, _ := testBot(t, &fakeCapturer{png: shotPNG(t)}, api)

	c := newFakeCtx(7)
	c.text = "https://steamcommunity.com/profiles/76561197960287930"
	require.NoError(t, b.onImageLink(pic.BanScreen)(c))

	assert.Equal(t, 1, api.sends)
	assert.Equal(t, 1, api.deletes)
	require.Len(t, c.sent, 1)
	assert.IsType(t, &tele.Photo{}, c.sent[0])
}

func TestImageFlowDeletesWaitMessageOnFailure(t *testing.T) {
	api := &fakeAPI{}
	b, _ := testBot(t, &fakeCapturer{err: context.DeadlineExceeded}, api)

	c := newFakeCtx(7)
	c.text = "https://steamcommunity.com/profiles/76561197960287930"
	require.NoError(t, b.onImageLink(pic.BanScreen)(c))

	assert.Equal(t, 1, api.sends)
	assert.Equal(t, 1, api.deletes)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Не получилось")
}

func TestQRPhotoFlowReturnsDocument(t *testing.T) {
	qrPNG, err := qrcode.Encode("hello", qrcode.Medium, 256)
	require.NoError(t, err)

	api := &fakeAPI{file: qrPNG}
	b, states := testBot(t, nil, api)

	c := newFakeCtx(7)
	c.msg = &tele.Message{Photo: &tele.Photo{}}
	states.SetState(context.Background(), 7, stateAwaitQRPhoto)

	require.NoError(t, b.onQRPhoto(c))
	assert.False(t, states.InProgress(context.Background(), 7))
	require.Len(t, c.sent, 1)
	doc, ok := c.sent[0].(*tele.Document)
	require.True(t, ok)
	assert.Equal(t, "qr.png", doc.FileName)
}

func TestQRPhotoFlowNoCode(t *testing.T) {
	api := &fakeAPI{file: shotPNG(t)}
	b, states := testBot(t, nil, api)

	c := newFakeCtx(7)
	c.msg = &tele.Message{Photo: &tele.Photo{}}
	states.SetState(context.Background(), 7, stateAwaitQRPhoto)

	require.NoError(t, b.onQRPhoto(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Не нашёл QR-код")
}
