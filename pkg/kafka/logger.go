package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"github.com/klwxsrx/state-aggregator/pkg/log"
)

type loggerAdapter struct {
	logger log.Logger
}

func newLoggerAdapter(logger log.Logger) sarama.StdLogger {
	return loggerAdapter{logger}
}

func (l loggerAdapter) Print(v ...any) {
	l.log(fmt.Sprint(v...))
}

func (l loggerAdapter) Printf(format string, v ...any) {
	l.log(fmt.Sprintf(format, v...))
}

func (l loggerAdapter) Println(v ...any) {
	l.log(fmt.Sprintln(v...))
}

func (l loggerAdapter) log(msg string) {
	l.logger.Debug(context.Background(), strings.TrimSpace(msg))
}
