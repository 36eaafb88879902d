package visitor

import "time"

// Visitor は訪問者ディレクトリのプロフィールを表す
// ディレクトリ自体は外部システムの所有であり、本サービスは参照のみを行う
type Visitor struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName は表示用の氏名を返す
func (v *Visitor) FullName() string {
	return v.FirstName + " " + v.LastName
}
