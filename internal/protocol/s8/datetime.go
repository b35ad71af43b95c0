package s8

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidDateTime 日期时间数字可取出但构成非法日历值（如 13 月）
	ErrInvalidDateTime = errors.New("invalid date/time")
)

// 自动日期表文本窗口：应答下标 [4, 26)
const (
	dateTimeWindowStart = 4
	dateTimeWindowEnd   = 26
	dateTimeDigits      = 12
)

// DateTime 自动日期表时间值
// 线上字段顺序固定为 秒 分 时 日 月 年，年为两位（0-99）
type DateTime struct {
	Second int
	Minute int
	Hour   int
	Day    int
	Month  int
	Year   int // 两位年
}

// Validate 校验各字段取值范围
func (dt DateTime) Validate() error {
	switch {
	case dt.Second < 0 || dt.Second > 59:
		return fmt.Errorf("%w: second %d", ErrInvalidDateTime, dt.Second)
	case dt.Minute < 0 || dt.Minute > 59:
		return fmt.Errorf("%w: minute %d", ErrInvalidDateTime, dt.Minute)
	case dt.Hour < 0 || dt.Hour > 23:
		return fmt.Errorf("%w: hour %d", ErrInvalidDateTime, dt.Hour)
	case dt.Day < 1 || dt.Day > 31:
		return fmt.Errorf("%w: day %d", ErrInvalidDateTime, dt.Day)
	case dt.Month < 1 || dt.Month > 12:
		return fmt.Errorf("%w: month %d", ErrInvalidDateTime, dt.Month)
	case dt.Year < 0 || dt.Year > 99:
		return fmt.Errorf("%w: year %d", ErrInvalidDateTime, dt.Year)
	}
	return nil
}

// EncodeBCD 按线上字段顺序编码为 6 个 BCD 字节
// 每字段固定两位十进制，十位在高半字节（59 秒 → 0x59）
func (dt DateTime) EncodeBCD() []byte {
	return []byte{
		toBCD(dt.Second),
		toBCD(dt.Minute),
		toBCD(dt.Hour),
		toBCD(dt.Day),
		toBCD(dt.Month),
		toBCD(dt.Year),
	}
}

func toBCD(v int) byte {
	return byte(v/10<<4 | v%10)
}

// FromTime 由 time.Time 构造日期表时间值
func FromTime(t time.Time) DateTime {
	return DateTime{
		Second: t.Second(),
		Minute: t.Minute(),
		Hour:   t.Hour(),
		Day:    t.Day(),
		Month:  int(t.Month()),
		Year:   t.Year() % 100,
	}
}

// Time 转换为 time.Time，两位年按 2000 年基准展开
func (dt DateTime) Time() time.Time {
	return time.Date(2000+dt.Year, time.Month(dt.Month), dt.Day,
		dt.Hour, dt.Minute, dt.Second, 0, time.Local)
}

// String 按 "yy-MM-dd hh:mm:ss" 输出
func (dt DateTime) String() string {
	return fmt.Sprintf("%02d-%02d-%02d %02d:%02d:%02d",
		dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second)
}

// DecodeDateTime 解码读取自动日期表应答
// 取 [4, 26) 的 ASCII 文本窗口，剔除所有非数字字符后必须恰为 12 位数字，
// 按 秒 分 时 日 月 年 两两切分并做日历范围校验
func DecodeDateTime(response []byte) (DateTime, error) {
	window, err := PayloadWindow(response, dateTimeWindowStart, dateTimeWindowEnd)
	if err != nil {
		return DateTime{}, err
	}

	digits := make([]byte, 0, dateTimeDigits)
	for _, c := range window {
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) != dateTimeDigits {
		return DateTime{}, fmt.Errorf("%w: got %d digits, want %d", ErrInvalidDateTime, len(digits), dateTimeDigits)
	}

	dt := DateTime{
		Second: twoDigit(digits[0:2]),
		Minute: twoDigit(digits[2:4]),
		Hour:   twoDigit(digits[4:6]),
		Day:    twoDigit(digits[6:8]),
		Month:  twoDigit(digits[8:10]),
		Year:   twoDigit(digits[10:12]),
	}
	if err := dt.Validate(); err != nil {
		return DateTime{}, err
	}
	return dt, nil
}

func twoDigit(d []byte) int {
	return int(d[0]-'0')*10 + int(d[1]-'0')
}
