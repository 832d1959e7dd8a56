package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type failingMailer struct{}

func (failingMailer) Send(context.Context, Message) error { return errors.New("relay refused") }

func TestTemplates(t *testing.T) {
	Convey("Given the built-in templates", t, func() {
		tpl := DefaultTemplates()

		Convey("When rendering a verification code", func() {
			msg, err := tpl.Render(model.MailJob{Kind: model.MailVerifyEmail, To: "a@x.io", Code: "482913"})

			Convey("Then the code and validity should appear in the body", func() {
				So(err, ShouldBeNil)
				So(msg.To, ShouldEqual, "a@x.io")
				So(msg.Subject, ShouldEqual, "Verify your email")
				So(msg.HTML, ShouldContainSubstring, "Your OTP: 482913")
				So(msg.HTML, ShouldContainSubstring, "10 minutes")
				So(strings.HasPrefix(msg.HTML, "<div"), ShouldBeTrue)
			})
		})

		Convey("When rendering a reset confirmation", func() {
			msg, err := tpl.Render(model.MailJob{Kind: model.MailResetDone, To: "a@x.io"})

			Convey("Then no code should be needed", func() {
				So(err, ShouldBeNil)
				So(msg.HTML, ShouldContainSubstring, "Password Reset Successful")
			})
		})

		Convey("When the code contains markup", func() {
			msg, err := tpl.Render(model.MailJob{Kind: model.MailResetPassword, To: "a@x.io", Code: "<b>1</b>"})

			Convey("Then it should be escaped", func() {
				So(err, ShouldBeNil)
				So(msg.HTML, ShouldContainSubstring, "&lt;b&gt;1&lt;/b&gt;")
			})
		})

		Convey("When the kind is unknown", func() {
			_, err := tpl.Render(model.MailJob{Kind: "newsletter"})

			Convey("Then it should fail", func() {
				So(errors.Is(err, ErrUnknownKind), ShouldBeTrue)
			})
		})
	})
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher over a log mailer", t, func() {
		lm := NewLogMailer(nil)
		d := NewDispatcher(lm)

		Convey("When a job is sent", func() {
			err := d.Send(context.Background(), model.MailJob{Kind: model.MailVerifyEmail, To: "a@x.io", Code: "111222"})

			Convey("Then the rendered message should be recorded", func() {
				So(err, ShouldBeNil)
				msg, ok := lm.Last("a@x.io")
				So(ok, ShouldBeTrue)
				So(msg.HTML, ShouldContainSubstring, "111222")
			})
		})

		Convey("When the mailer fails", func() {
			err := NewDispatcher(failingMailer{}).Send(context.Background(), model.MailJob{Kind: model.MailResetDone, To: "a@x.io"})

			Convey("Then the error should be returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "relay refused")
			})
		})
	})
}

func TestSMTPMailer(t *testing.T) {
	Convey("Given SMTP settings", t, func() {
		Convey("Then host and sender are required", func() {
			_, err := NewSMTPMailer(SMTPConfig{From: "noreply@x.io"})
			So(err, ShouldNotBeNil)
			_, err = NewSMTPMailer(SMTPConfig{Host: "localhost"})
			So(err, ShouldNotBeNil)
		})

		Convey("When the relay is unreachable", func() {
			m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@x.io"})
			So(err, ShouldBeNil)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			Convey("Then Send should fail", func() {
				So(m.Send(ctx, Message{To: "a@x.io", Subject: "s", HTML: "<p>x</p>"}), ShouldNotBeNil)
			})
		})

		Convey("When the recipient is malformed", func() {
			m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, From: "noreply@x.io"})
			So(err, ShouldBeNil)

			Convey("Then Send should fail before dialing", func() {
				err := m.Send(context.Background(), Message{To: "not an address", Subject: "s"})
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "smtp to")
			})
		})
	})
}
