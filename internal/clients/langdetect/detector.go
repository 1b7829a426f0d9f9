// Package langdetect 以字元 trigram 判斷文本語言。
package langdetect

import (
	"github.com/abadojack/whatlanggo"
	"github.com/pkg/errors"
)

var ErrUndetermined = errors.New("language could not be determined")

// Detector 實作 services.LanguageDetector
type Detector struct {
	// MinConfidence 以下的結果視為偵測失敗；0 表示接受任何結果
	MinConfidence float64
}

func NewDetector(minConfidence float64) *Detector {
	return &Detector{MinConfidence: minConfidence}
}

// Detect 回傳 ISO 639-1 語言代碼
func (d *Detector) Detect(text string) (string, error) {
	info := whatlanggo.Detect(text)
	if info.Script == nil || info.Lang < 0 {
		return "", ErrUndetermined
	}
	if d.MinConfidence > 0 && info.Confidence < d.MinConfidence {
		return "", errors.Wrapf(ErrUndetermined, "信心值 %.2f 低於門檻 %.2f", info.Confidence, d.MinConfidence)
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", errors.Wrapf(ErrUndetermined, "語言 %s 沒有 ISO 639-1 代碼", info.Lang.String())
	}
	return code, nil
}
