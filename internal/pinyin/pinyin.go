// internal/pinyin/pinyin.go
package pinyin

import (
	"strings"
	"unicode"
)

// 母音ごとの声調記号テーブル（1声〜4声。5声＝軽声は記号なし）
var toneMarks = map[rune][4]rune{
	'a': {'ā', 'á', 'ǎ', 'à'},
	'o': {'ō', 'ó', 'ǒ', 'ò'},
	'e': {'ē', 'é', 'ě', 'è'},
	'i': {'ī', 'í', 'ǐ', 'ì'},
	'u': {'ū', 'ú', 'ǔ', 'ù'},
	'ü': {'ǖ', 'ǘ', 'ǚ', 'ǜ'},
}

// Normalize は数字声調表記（ni3hao3）を声調記号付き表記（nǐhǎo）に変換します。
// 空白区切りの各トークンについて、英字の連続＋末尾の数字1〜5の組を変換する。
// 数字を持たないトークンや解釈できない並びはそのまま通す（純粋・全域）。
// 出力はトークンを半角スペース1個で連結したもの。
func Normalize(input string) string {
	fields := strings.Fields(input)
	for i, tok := range fields {
		fields[i] = normalizeToken(tok)
	}
	return strings.Join(fields, " ")
}

// normalizeToken は1トークン内の「英字の連続＋声調数字」をすべて変換します
func normalizeToken(token string) string {
	runes := []rune(token)
	var out strings.Builder

	i := 0
	for i < len(runes) {
		if !unicode.IsLetter(runes[i]) {
			out.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && unicode.IsLetter(runes[j]) {
			j++
		}
		if j < len(runes) && runes[j] >= '1' && runes[j] <= '5' {
			out.WriteString(applyTone(runes[i:j], int(runes[j]-'0')))
			j++
		} else {
			out.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return out.String()
}

// applyTone は1音節に声調記号を付けます。記号を置ける母音が見つからない場合は
// 数字を含め元の並びをそのまま返す。
func applyTone(run []rune, tone int) string {
	syl := make([]rune, len(run))
	for i, r := range run {
		// v は ü の入力代替表記
		if r == 'v' {
			syl[i] = 'ü'
		} else {
			syl[i] = r
		}
	}

	idx := markIndex(syl)
	if idx < 0 {
		return string(run) + string(rune('0'+tone))
	}
	if tone >= 1 && tone <= 4 {
		if marks, ok := toneMarks[syl[idx]]; ok {
			syl[idx] = marks[tone-1]
		}
	}
	// 5声（軽声）は記号を付けず数字だけ落とす
	return string(syl)
}

// markIndex は声調記号を受け取る母音の位置を返します。
// 優先順位: a > o > e > iu（uに付ける） > i > u > ü
func markIndex(syl []rune) int {
	for _, target := range []rune{'a', 'o', 'e'} {
		for i, r := range syl {
			if r == target {
				return i
			}
		}
	}
	// "iu" の場合は u に付ける
	for i := 0; i+1 < len(syl); i++ {
		if syl[i] == 'i' && syl[i+1] == 'u' {
			return i + 1
		}
	}
	for _, target := range []rune{'i', 'u', 'ü'} {
		for i, r := range syl {
			if r == target {
				return i
			}
		}
	}
	return -1
}
