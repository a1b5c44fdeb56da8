package service

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"budget/aggregate"
	"budget/config"

	"gopkg.in/gomail.v2"
)

// ErrEmailDisabled 邮件服务未启用
var ErrEmailDisabled = errors.New("邮件服务未启用，请配置 BUDGET_EMAIL_ENABLED=true")

// ReportEmail 报表邮件内容
type ReportEmail struct {
	To         string
	Name       string
	Period     string
	Summary    aggregate.Summary
	Categories []aggregate.CategoryAmount
}

// EmailService 邮件服务
type EmailService struct {
	cfg  *config.EmailConfig
	send func(*gomail.Message) error
}

// NewEmailService 创建邮件服务
func NewEmailService(cfg *config.EmailConfig) *EmailService {
	s := &EmailService{cfg: cfg}
	s.send = s.dialAndSend
	return s
}

// Enabled 是否已启用
func (s *EmailService) Enabled() bool {
	return s.cfg != nil && s.cfg.Enabled
}

// SendReportEmail 发送收支汇总和支出分布
func (s *EmailService) SendReportEmail(report ReportEmail) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.cfg.Username, s.cfg.From))
	m.SetHeader("To", report.To)
	m.SetHeader("Subject", fmt.Sprintf("Budget report: %s", report.Period))
	m.SetBody("text/html", s.generateReportBody(report))

	if err := s.send(m); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

func (s *EmailService) dialAndSend(m *gomail.Message) error {
	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}

// generateReportBody 生成报表邮件内容
func (s *EmailService) generateReportBody(report ReportEmail) string {
	var rows strings.Builder
	for _, c := range report.Categories {
		fmt.Fprintf(&rows, `
            <tr><td>%s</td><td class="num">%s</td></tr>`,
			html.EscapeString(c.Name), c.Amount.StringFixed(2))
	}
	if len(report.Categories) == 0 {
		rows.WriteString(`
            <tr><td colspan="2">No expenses in this period</td></tr>`)
	}

	name := report.Name
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; background: #f5f5f5; margin: 0; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; overflow: hidden; }
        .header { background: #4CAF50; color: white; padding: 24px; text-align: center; }
        .content { padding: 30px; }
        table { width: 100%%; border-collapse: collapse; margin: 16px 0; }
        td, th { padding: 8px; border-bottom: 1px solid #eee; text-align: left; }
        .num { text-align: right; }
        .footer { background: #f8f9fa; padding: 16px; text-align: center; color: #6c757d; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header"><h1>Budget report</h1><p>%s</p></div>
        <div class="content">
            <p>Hi %s,</p>
            <table>
                <tr><th>Total income</th><td class="num">%s</td></tr>
                <tr><th>Total expenses</th><td class="num">%s</td></tr>
                <tr><th>Balance</th><td class="num">%s</td></tr>
            </table>
            <h3>Spending by category</h3>
            <table>%s
            </table>
        </div>
        <div class="footer"><p>This email was sent automatically, please do not reply.</p></div>
    </div>
</body>
</html>
`,
		html.EscapeString(report.Period),
		html.EscapeString(name),
		report.Summary.TotalIncome.StringFixed(2),
		report.Summary.TotalExpenses.StringFixed(2),
		report.Summary.Balance.StringFixed(2),
		rows.String(),
	)
}
