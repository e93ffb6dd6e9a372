package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/mautops/approval-agent/internal/config"
	"github.com/mautops/approval-agent/internal/metrics"
	"github.com/sirupsen/logrus"
)

// EmailNotifier 通过 SMTP 发送邮件通知
type EmailNotifier struct {
	host     string
	port     int
	username string
	password string
	logger   *logrus.Logger

	// sendMail 可在测试中替换,默认实现带拨号与读写超时(STARTTLS)
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier 创建邮件通知器
// 凭据缺失时通知器处于未配置状态,Notify 记录一条提示后跳过发送
func NewEmailNotifier(cfg config.NotifyConfig, logger *logrus.Logger) *EmailNotifier {
	if logger == nil {
		logger = logrus.New()
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &EmailNotifier{
		host:     cfg.SMTPHost,
		port:     port,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		logger:   logger,
		sendMail: sendMailWithDeadline(timeout),
	}
}

// sendMailWithDeadline 返回带超时约束的 SMTP 发送函数
// smtp.SendMail 本身没有任何拨号或读写期限,服务器挂起会阻塞整个评估批次,
// 因此自行拨号并在连接上设置截止时间
func sendMailWithDeadline(timeout time.Duration) func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	return func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return err
		}

		client, err := smtp.NewClient(conn, host)
		if err != nil {
			return err
		}
		defer client.Close()

		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
				return err
			}
		}
		if a != nil {
			if ok, _ := client.Extension("AUTH"); ok {
				if err := client.Auth(a); err != nil {
					return err
				}
			}
		}

		if err := client.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := client.Rcpt(rcpt); err != nil {
				return err
			}
		}

		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := w.Write(msg); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}

		return client.Quit()
	}
}

// Notify 发送一封纯文本邮件
func (e *EmailNotifier) Notify(ctx context.Context, title string, message string, recipient string) bool {
	if e.username == "" || e.password == "" {
		e.logger.WithField("recipient", recipient).Info("SMTP credentials not configured, email skipped")
		metrics.RecordNotification("email", "skipped")
		return false
	}
	if recipient == "" {
		e.logger.Warn("Email notification has no recipient, skipped")
		metrics.RecordNotification("email", "skipped")
		return false
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordNotification("email", "failed")
		return false
	}

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.username, recipient, title, message))
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	if err := e.sendMail(addr, auth, e.username, []string{recipient}, msg); err != nil {
		e.logger.WithError(err).WithField("recipient", recipient).Error("Failed to send email notification")
		metrics.RecordNotification("email", "failed")
		return false
	}

	e.logger.WithFields(logrus.Fields{
		"recipient": recipient,
		"title":     title,
	}).Info("Email notification sent")
	metrics.RecordNotification("email", "sent")
	return true
}
