package generator

// Spec 描述一次生成请求。
type Spec struct {
	Requirements string `json:"requirements"`
	Words        int    `json:"words"`
}

// Draft 是清洗后的模型稿件（Markdown 形式）。
type Draft struct {
	Title    string `json:"title"`
	Digest   string `json:"digest"`
	Markdown string `json:"markdown"`
}
