package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"wikispider/internal/merge"
	"wikispider/internal/scheduler"
	"wikispider/internal/wiki"

	"github.com/stretchr/testify/require"
)

var sample = []scheduler.GroupResult{
	{
		Game:     wiki.GENSHIN,
		Category: wiki.WEAPON,
		Adapters: []scheduler.AdapterResult{
			{Source: "ambr", Priority: 90, Records: 210, Flattened: 210},
			{Source: "honey", Priority: 110, Err: errors.New("status code 503")},
		},
		Records:    210,
		Collisions: []merge.Collision{{Key: "11401", Field: "name"}},
		Path:       "data/raw/genshin/weapon.json",
	},
	{
		Game:     wiki.GENSHIN,
		Category: wiki.OTHER,
		Adapters: []scheduler.AdapterResult{
			{Source: "gamedata", Priority: 100},
		},
	},
}

func TestRender(t *testing.T) {
	out := bytes.NewBuffer(nil)
	Render(out, sample)

	text := out.String()
	require.Contains(t, text, "ambr(90) 210")
	require.Contains(t, text, "honey(110) failed")
	require.Contains(t, text, "data/raw/genshin/weapon.json")
	require.Contains(t, text, "no data")
}

func TestFailures(t *testing.T) {
	require.True(t, AnyFailed(sample))
	require.False(t, AnyFailed(sample[1:]))
	require.Equal(t, []string{"genshin/weapon honey: status code 503"}, Failures(sample))
}

func TestCompose(t *testing.T) {
	mailer := NewMailer(EmailConfig{
		Smtp:       SmtpConfig{Server: "smtp.example.com", Port: 587, EmailAddress: "crawler@example.com"},
		Recipients: []string{"maintainer@example.com"},
	})
	mail := mailer.Compose("a1b2c3d4", sample)
	require.Equal(t, []string{"maintainer@example.com"}, mail.To)
	require.Equal(t, "wikispider <crawler@example.com>", mail.From)
	require.Contains(t, mail.Subject, "a1b2c3d4")
	require.Contains(t, string(mail.Text), "genshin/weapon honey: status code 503")
}

func TestSendFailuresSkips(t *testing.T) {
	sent, err := NewMailer(EmailConfig{}).SendFailures(context.Background(), "run", sample)
	require.NoError(t, err)
	require.False(t, sent)

	configured := NewMailer(EmailConfig{
		Smtp:       SmtpConfig{Server: "smtp.example.com", Port: 587, EmailAddress: "crawler@example.com"},
		Recipients: []string{"maintainer@example.com"},
	})
	sent, err = configured.SendFailures(context.Background(), "run", sample[1:])
	require.NoError(t, err)
	require.False(t, sent)
}
