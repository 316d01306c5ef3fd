package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/relay/backend/internal/config"
	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relay/backend/internal/upstream"
)

// 用和 /api/send-mail-maileroo 相同的配置和请求体发一封邮件，方便部署后检查 Maileroo 配置
func main() {
	var to, subject, message string

	flag.StringVar(&to, "to", "", "收件人地址")
	flag.StringVar(&subject, "subject", "Maileroo 配置测试", "邮件主题")
	flag.StringVar(&message, "message", "如果你收到了这封邮件，说明发信配置正确。", "邮件正文")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if name := cfg.MissingMailEnv(); name != "" {
		logger.Error("缺少环境变量", slog.String("variable", name))
		os.Exit(1)
	}

	/**********************************************
	 * 校验参数
	 **********************************************/
	req := domain.NewMailRequest(to, subject, message)
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(req); err != nil {
		logger.Error("参数不完整", slog.String("error", err.Error()))
		flag.Usage()
		os.Exit(2)
	}

	payload := domain.BuildMailerooPayload(req, domain.MailAddress{
		Address:     cfg.Mail.FromAddress,
		DisplayName: cfg.Mail.FromName,
	}, cfg.Mail.Footer)

	/**********************************************
	 * 发送
	 **********************************************/
	// 允许 CTRL+C 取消正在进行的请求
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reply, err := upstream.NewUpstream(cfg, nil).SendMail(ctx, payload)
	if err != nil {
		logger.Error("调用 Maileroo API 失败", slog.String("error", err.Error()))
		os.Exit(1)
	}

	body := describeBody(reply.Body)
	if !reply.OK() {
		logger.Error("Maileroo API 返回错误", slog.Int("status", reply.StatusCode), slog.String("body", body))
		os.Exit(1)
	}

	logger.Info("邮件已提交", slog.String("to", req.To), slog.String("body", body))
}

// describeBody 把响应体转成日志中的字符串，无法序列化时退回 %v 格式
func describeBody(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
