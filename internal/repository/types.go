package repository

// PromoListFilter 查询优惠码列表的过滤条件
type PromoListFilter struct {
	Page     int
	PageSize int
	Search   string // 按优惠码编码模糊匹配
	Status   string
}

// PromoUsageListFilter 查询优惠码核销记录的过滤条件
type PromoUsageListFilter struct {
	Page        int
	PageSize    int
	PromoCodeID uint
	UserID      string
}
