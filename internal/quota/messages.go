package quota

import (
	"strconv"
	"strings"

	"lifex-server/internal/domain"
)

// Usage carries the numbers substituted into message templates.
type Usage struct {
	Used           int
	Limit          int
	Remaining      int
	MinutesToReset int
}

// Percent is the share of the limit already used, truncated.
func (u Usage) Percent() int {
	if u.Limit <= 0 {
		return 0
	}
	return u.Used * 100 / u.Limit
}

type voice map[domain.Situation]string

// Coly speaks like a warm personal assistant, Max like a business advisor.
var templates = map[Language]map[domain.Assistant]voice{
	LangEnglish: {
		domain.AssistantColy: {
			domain.SituationTierNotEntitled:  "Coly isn't part of your current plan yet. Upgrade to Essential or Premium and I'll be right here to help with everyday life!",
			domain.SituationLimitReached:     "We've had a lot of great chats! You've used all {limit} Coly messages this hour ({used}/{limit}). Let's pick this up again in {minutes} min.",
			domain.SituationApproachingLimit: "Just a heads-up: {used}/{limit} Coly messages used this hour ({percent}%). {remaining} left before the reset in {minutes} min.",
		},
		domain.AssistantMax: {
			domain.SituationTierNotEntitled:  "Max, your business assistant, is available on the Premium plan. Upgrade to unlock business insights and tools.",
			domain.SituationLimitReached:     "Hourly Max quota reached: {used}/{limit} requests used. Your quota resets in {minutes} min.",
			domain.SituationApproachingLimit: "Usage notice: {used}/{limit} Max requests used this hour ({percent}%). {remaining} remaining, reset in {minutes} min.",
		},
	},
	LangChinese: {
		domain.AssistantColy: {
			domain.SituationTierNotEntitled:  "你当前的套餐还不包含 Coly。升级到 Essential 或 Premium，我就能陪你处理生活中的大小事啦！",
			domain.SituationLimitReached:     "这一小时我们聊得很开心！本小时的 {limit} 条 Coly 消息已全部用完（{used}/{limit}），{minutes} 分钟后再来找我吧。",
			domain.SituationApproachingLimit: "温馨提示：本小时已使用 {used}/{limit} 条 Coly 消息（{percent}%），还剩 {remaining} 条，{minutes} 分钟后重置。",
		},
		domain.AssistantMax: {
			domain.SituationTierNotEntitled:  "商务助手 Max 仅在 Premium 套餐中提供。升级即可解锁商业洞察与工具。",
			domain.SituationLimitReached:     "已达到 Max 每小时配额：已使用 {used}/{limit} 次请求。配额将在 {minutes} 分钟后重置。",
			domain.SituationApproachingLimit: "用量提醒：本小时已使用 {used}/{limit} 次 Max 请求（{percent}%），剩余 {remaining} 次，{minutes} 分钟后重置。",
		},
	},
	LangJapanese: {
		domain.AssistantColy: {
			domain.SituationTierNotEntitled:  "現在のプランには Coly が含まれていません。Essential または Premium にアップグレードすると、毎日の暮らしをお手伝いできます！",
			domain.SituationLimitReached:     "たくさんお話しできてうれしいです！この1時間の Coly メッセージ {limit} 件をすべて使い切りました（{used}/{limit}）。{minutes} 分後にまた話しましょう。",
			domain.SituationApproachingLimit: "お知らせ：この1時間で Coly メッセージを {used}/{limit} 件使用しました（{percent}%）。残り {remaining} 件、{minutes} 分後にリセットされます。",
		},
		domain.AssistantMax: {
			domain.SituationTierNotEntitled:  "ビジネスアシスタント Max は Premium プランでご利用いただけます。アップグレードしてビジネス向け機能をご活用ください。",
			domain.SituationLimitReached:     "Max の1時間あたりの上限に達しました：{used}/{limit} 件使用済み。{minutes} 分後にリセットされます。",
			domain.SituationApproachingLimit: "利用状況：この1時間で Max リクエストを {used}/{limit} 件使用しました（{percent}%）。残り {remaining} 件、{minutes} 分後にリセットされます。",
		},
	},
	LangKorean: {
		domain.AssistantColy: {
			domain.SituationTierNotEntitled:  "현재 요금제에는 Coly가 포함되어 있지 않아요. Essential 또는 Premium으로 업그레이드하면 일상생활을 도와드릴게요!",
			domain.SituationLimitReached:     "즐거운 대화였어요! 이번 시간의 Coly 메시지 {limit}개를 모두 사용했어요 ({used}/{limit}). {minutes}분 후에 다시 이야기해요.",
			domain.SituationApproachingLimit: "알려드려요: 이번 시간에 Coly 메시지 {used}/{limit}개를 사용했어요 ({percent}%). {remaining}개 남았고 {minutes}분 후에 초기화돼요.",
		},
		domain.AssistantMax: {
			domain.SituationTierNotEntitled:  "비즈니스 어시스턴트 Max는 Premium 요금제에서 이용할 수 있습니다. 업그레이드하여 비즈니스 기능을 이용해 보세요.",
			domain.SituationLimitReached:     "Max 시간당 한도에 도달했습니다: {used}/{limit}건 사용. {minutes}분 후에 한도가 초기화됩니다.",
			domain.SituationApproachingLimit: "사용량 안내: 이번 시간에 Max 요청 {used}/{limit}건을 사용했습니다 ({percent}%). {remaining}건 남았으며 {minutes}분 후에 초기화됩니다.",
		},
	},
}

// Message renders the text for a situation in the assistant's voice. Unsupported
// languages use DefaultLanguage, unknown assistants use Coly's voice, and
// SituationNone renders as "".
func Message(a domain.Assistant, s domain.Situation, lang Language, u Usage) string {
	tmpl := lookupTemplate(a, s, lang)
	if tmpl == "" {
		return ""
	}
	r := strings.NewReplacer(
		"{used}", strconv.Itoa(u.Used),
		"{limit}", strconv.Itoa(u.Limit),
		"{remaining}", strconv.Itoa(u.Remaining),
		"{percent}", strconv.Itoa(u.Percent()),
		"{minutes}", strconv.Itoa(u.MinutesToReset),
	)
	return r.Replace(tmpl)
}

func lookupTemplate(a domain.Assistant, s domain.Situation, lang Language) string {
	if s == domain.SituationNone {
		return ""
	}
	if parsed, ok := domain.ParseAssistant(string(a)); ok {
		a = parsed
	} else {
		a = domain.AssistantColy
	}
	if tmpl := templates[lang][a][s]; tmpl != "" {
		return tmpl
	}
	return templates[DefaultLanguage][a][s]
}
