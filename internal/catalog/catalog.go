package catalog

// Entry describe un plan comercial tal como se publica en la web.
// Los planes de juego/bots usan "storage"; los VPS usan "disk".
type Entry struct {
	Name    string `json:"name"`
	Price   string `json:"price"`
	RAM     string `json:"ram"`
	CPU     string `json:"cpu"`
	Storage string `json:"storage,omitempty"`
	Disk    string `json:"disk,omitempty"`
}

const (
	PlanTypeMinecraft = "minecraft"
	PlanTypeDiscord   = "discord"
	PlanTypeVPS       = "vps"
)

var plans = map[string][]Entry{
	PlanTypeMinecraft: {
		{Name: "Furious – Grass", Price: "₹45", RAM: "2GB", CPU: "1 vCore", Storage: "12GB"},
		{Name: "Furious – Wood", Price: "₹90", RAM: "4GB", CPU: "2 vCores", Storage: "24GB"},
		{Name: "Furious – Stone", Price: "₹180", RAM: "6GB", CPU: "3 vCores", Storage: "36GB"},
		{Name: "Furious – Coal", Price: "₹300", RAM: "8GB", CPU: "4 vCores", Storage: "48GB"},
		{Name: "Furious – Iron", Price: "₹420", RAM: "12GB", CPU: "5 vCores", Storage: "60GB"},
		{Name: "Furious – Diamond", Price: "₹600", RAM: "16GB", CPU: "6 vCores", Storage: "72GB"},
		{Name: "Furious – Netherite", Price: "₹900", RAM: "24GB", CPU: "7 vCores", Storage: "96GB"},
	},
	PlanTypeDiscord: {
		{Name: "Starter", Price: "₹10", RAM: "256MB", CPU: "50%", Storage: "512MB"},
		{Name: "Basic", Price: "₹45", RAM: "512MB", CPU: "75%", Storage: "1024MB"},
		{Name: "Standard", Price: "₹90", RAM: "1024MB", CPU: "100%", Storage: "2048MB"},
		{Name: "Advanced", Price: "₹170", RAM: "2048MB", CPU: "150%", Storage: "4096MB"},
		{Name: "Developer", Price: "₹260", RAM: "4096MB", CPU: "200%", Storage: "8192MB"},
	},
	PlanTypeVPS: {
		{Name: "Intel 16GB", Price: "₹629", RAM: "16GB", CPU: "6 Cores", Disk: "100GB"},
		{Name: "Intel 32GB", Price: "₹1199", RAM: "32GB", CPU: "12 Cores", Disk: "200GB"},
		{Name: "Intel 48GB", Price: "₹1699", RAM: "48GB", CPU: "18 Cores", Disk: "300GB"},
		{Name: "Intel 64GB", Price: "₹2299", RAM: "64GB", CPU: "26 Cores", Disk: "400GB"},
	},
}

// Plans devuelve el catalogo para un tipo de plan y si el tipo es conocido.
func Plans(planType string) ([]Entry, bool) {
	entries, ok := plans[planType]
	if !ok {
		return nil, false
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, true
}

// Types lista los tipos de plan soportados.
func Types() []string {
	return []string{PlanTypeMinecraft, PlanTypeDiscord, PlanTypeVPS}
}
