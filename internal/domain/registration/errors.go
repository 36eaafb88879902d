package registration

import "errors"

// Registration ドメインのエラー定義
var (
	ErrRegistrationNotFound = errors.New("登録が見つかりません")
	ErrAlreadyRegistered    = errors.New("このイベントには既に登録されています")
	ErrAlreadyCancelled     = errors.New("登録は既にキャンセルされています")
	ErrPhoneMismatch        = errors.New("電話番号が登録と一致しません")
	ErrInstanceNotOpen      = errors.New("完了またはキャンセル済みのイベントには登録できません")
	ErrInstanceStarted      = errors.New("開始済みのイベントの登録はキャンセルできません")
)
